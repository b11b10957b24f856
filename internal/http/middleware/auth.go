// README: Auth middleware: verifies the x-auth-token header and stores the caller id.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cabbook/internal/infra"
	"cabbook/internal/types"
)

const (
	HeaderToken = "x-auth-token"
	callerKey   = "caller_uid"
)

func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderToken))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "no token, authorization denied"})
			return
		}
		ident, err := verifier.VerifyToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": false, "message": "token is not valid"})
			return
		}
		c.Set(callerKey, ident.UserID)
		c.Next()
	}
}

// CallerUID returns the verified caller id, or "" outside Auth.
func CallerUID(c *gin.Context) types.ID {
	v, ok := c.Get(callerKey)
	if !ok {
		return ""
	}
	id, _ := v.(types.ID)
	return id
}
