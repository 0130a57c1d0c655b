package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mdw "github.com/parkashmi09/entryManagementbackend/internal/transport/http/middleware"
	resp "github.com/parkashmi09/entryManagementbackend/internal/transport/http/response"
	"github.com/parkashmi09/entryManagementbackend/internal/service"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

type AuthHandler struct {
	users  service.UserService
	authMW gin.HandlerFunc
}

func NewAuthHandler(users service.UserService, authMW gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{users: users, authMW: authMW}
}

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/refresh-token", h.Refresh)

	authed := g.Group("", h.authMW)
	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.POST("/logout", h.Logout)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	out, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusCreated, "User registered successfully", out)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	out, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Login successful", out)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	out, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Token refreshed successfully", out)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	id, ok := mdw.IdentityFrom(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	out, err := h.users.Profile(c.Request.Context(), id.UID)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Profile fetched successfully", out)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	id, ok := mdw.IdentityFrom(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c, bindError(err))
		return
	}
	out, err := h.users.UpdateProfile(c.Request.Context(), id.UID, req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Profile updated successfully", out)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	id, ok := mdw.IdentityFrom(c)
	if !ok {
		resp.Fail(c, apperr.Unauthorized("Authentication failed"))
		return
	}
	if err := h.users.Logout(c.Request.Context(), id.UID); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, http.StatusOK, "Logged out successfully", nil)
}
