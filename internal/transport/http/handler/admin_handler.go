package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	resp "github.com/parkashmi09/entryManagementbackend/internal/transport/http/response"
	"github.com/parkashmi09/entryManagementbackend/internal/service"
)

// AdminHandler 后台端用户管理，整组要求 admin 角色
type AdminHandler struct {
	users   service.UserService
	adminMW gin.HandlerFunc
}

func NewAdminHandler(users service.UserService, adminMW gin.HandlerFunc) *AdminHandler {
	return &AdminHandler{users: users, adminMW: adminMW}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	g := admin.Group("", h.adminMW)
	g.GET("/users", h.ListUsers)
	g.POST("/users/:id/deactivate", h.Deactivate)
	g.POST("/users/:id/activate", h.Activate)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := h.users.ListUsers(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Page(c, http.StatusOK, "Users fetched successfully", items,
		resp.NewPagination(page, limit, total))
}

func (h *AdminHandler) Deactivate(c *gin.Context) {
	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), false); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "User deactivated successfully", gin.H{"id": c.Param("id")})
}

func (h *AdminHandler) Activate(c *gin.Context) {
	if err := h.users.SetActive(c.Request.Context(), c.Param("id"), true); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "User activated successfully", gin.H{"id": c.Param("id")})
}
