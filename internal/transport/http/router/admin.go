package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/parkashmi09/entryManagementbackend/internal/core/auth"
	"github.com/parkashmi09/entryManagementbackend/internal/core/cache"
	"github.com/parkashmi09/entryManagementbackend/internal/core/config"
	"github.com/parkashmi09/entryManagementbackend/internal/core/server"
	"github.com/parkashmi09/entryManagementbackend/internal/repo"
	"github.com/parkashmi09/entryManagementbackend/internal/service"
	"github.com/parkashmi09/entryManagementbackend/internal/transport/http/handler"
	mdw "github.com/parkashmi09/entryManagementbackend/internal/transport/http/middleware"
)

// NewAdminEngine 后台端：/admin/v1，统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, cfg *config.Config, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache) *gin.Engine {
	// 后台流量小，直接用 ginzap 基础引擎
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		// 后台只有内网少量调用方，全局桶即可
		mdw.RateLimit(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	userRepo := repo.NewUserRepo(db)
	userSvc := service.NewUserService(userRepo, jwter, c)

	adminMW := mdw.RequireRole(jwter, userRepo, "admin")
	Register(handler.NewAdminHandler(userSvc, adminMW))

	admin := r.Group("/admin/v1")
	MountAllAdmin(admin)

	return r
}
