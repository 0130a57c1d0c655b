package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "github.com/parkashmi09/entryManagementbackend/internal/transport/http/response"
	"github.com/parkashmi09/entryManagementbackend/pkg/apperr"
)

// MaxBodyBytes 限制请求体大小
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			resp.Abort(c, &apperr.Error{Status: http.StatusRequestEntityTooLarge, Msg: "Request body too large"})
		}
	}
}
