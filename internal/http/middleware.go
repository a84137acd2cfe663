package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storyhub/internal/domain"
)

const userContextKey = "storyhub.user"

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired resolves the bearer token into a user and stores it on the
// request context. Missing, malformed or expired tokens, and tokens whose
// subject no longer exists, all abort with 401.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.auth.ResolveToken(c.Request.Context(), bearerToken(c))
		if err != nil {
			h.respondErr(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}
