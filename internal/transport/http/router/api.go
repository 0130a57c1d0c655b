package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/parkashmi09/entryManagementbackend/internal/core/auth"
	"github.com/parkashmi09/entryManagementbackend/internal/core/cache"
	"github.com/parkashmi09/entryManagementbackend/internal/core/config"
	"github.com/parkashmi09/entryManagementbackend/internal/repo"
	"github.com/parkashmi09/entryManagementbackend/internal/service"
	"github.com/parkashmi09/entryManagementbackend/internal/transport/http/handler"
	mdw "github.com/parkashmi09/entryManagementbackend/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：/api/v1 下挂 auth 与 entries
func NewAPIEngine(l *zap.Logger, cfg *config.Config, db *gorm.DB, jwter *auth.JWTer, c *cache.Cache) *gin.Engine {
	r := gin.New()

	r.Use(
		cors.Default(),
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userRepo := repo.NewUserRepo(db)
	entryRepo := repo.NewEntryRepo(db)
	userSvc := service.NewUserService(userRepo, jwter, c)
	entrySvc := service.NewEntryService(entryRepo)

	authMW := mdw.RequireAuth(jwter, userRepo)
	Register(handler.NewAuthHandler(userSvc, authMW))
	Register(handler.NewEntryHandler(entrySvc, authMW))

	api := r.Group("/api/v1")
	MountAllAPI(api)

	return r
}
