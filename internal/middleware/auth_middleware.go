package middleware

import (
	"net/http"
	"strings"

	"github.com/annel0/chunk-inspector/internal/auth"
	"github.com/gin-gonic/gin"
)

// OperatorKey - ключ gin.Context с именем оператора из токена
const OperatorKey = "operator"

// RequireOperator проверяет Bearer-токен оператора. nil issuer отключает проверку.
func RequireOperator(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(OperatorKey, claims.Operator)
		c.Next()
	}
}
