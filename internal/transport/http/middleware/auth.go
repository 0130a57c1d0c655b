package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/parkashmi09/entryManagementbackend/internal/core/auth"
	"github.com/parkashmi09/entryManagementbackend/internal/domain"
	resp "github.com/parkashmi09/entryManagementbackend/internal/transport/http/response"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

// UserFinder 鉴权需要回表确认账号仍然有效
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

const ctxKeyIdentity = "auth.identity"

// IdentityFrom 读取鉴权中间件注入的身份；未鉴权时 ok=false
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// RequireAuth Bearer 令牌校验 + 回表活跃检查，通过后注入 Identity
func RequireAuth(j *auth.JWTer, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := authenticate(c, j, users)
		if err != nil {
			resp.Abort(c, err)
			return
		}
		c.Set(ctxKeyIdentity, id)
		c.Next()
	}
}

// RequireRole RequireAuth 的角色限定版
func RequireRole(j *auth.JWTer, users UserFinder, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := authenticate(c, j, users)
		if err != nil {
			resp.Abort(c, err)
			return
		}
		allowed := false
		for _, r := range roles {
			if id.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			resp.Abort(c, apperr.Forbidden("Insufficient permissions"))
			return
		}
		c.Set(ctxKeyIdentity, id)
		c.Next()
	}
}

// OptionalAuth 鉴权失败不拦截，仅在成功时注入身份
func OptionalAuth(j *auth.JWTer, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := authenticate(c, j, users); err == nil {
			c.Set(ctxKeyIdentity, id)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, j *auth.JWTer, users UserFinder) (auth.Identity, error) {
	token := auth.ExtractBearer(c.GetHeader("Authorization"))
	if token == "" {
		return auth.Identity{}, apperr.Unauthorized("Access token required")
	}

	claims, err := j.VerifyAccess(token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return auth.Identity{}, apperr.Unauthorized("Access token expired")
	case errors.Is(err, auth.ErrTokenMalformed):
		return auth.Identity{}, apperr.Unauthorized("Invalid access token")
	case err != nil:
		return auth.Identity{}, apperr.Unauthorized("Authentication failed")
	}

	// 令牌在有效期内仍可能对应已停用账号，必须回表
	u, err := users.FindByID(c.Request.Context(), claims.UID)
	if err != nil || !u.IsActive {
		return auth.Identity{}, apperr.Unauthorized("User not found or inactive")
	}

	return auth.Identity{UID: u.ID, Email: u.Email, Role: u.Role}, nil
}
