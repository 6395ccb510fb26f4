// api/middleware/auth.go

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/casewise/themis/api/config"
	logger "github.com/casewise/themis/api/logging"
)

// PlatformClaims is the token shape issued by the platform's auth service.
// The role claim is authoritative for the auditor hard block, so it must
// come from the signed token, never from a request parameter.
type PlatformClaims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}

// AuthMiddleware verifies the bearer token and places the caller's identity
// and role into the gin context. Requests without a valid token get a
// generic 401; the parse failure detail stays in the local log.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			logger.Warn("Rejected request with invalid token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("userRole", claims.Role)

		c.Next()
	}
}

func parseToken(tokenString string) (*PlatformClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	secret := []byte(config.GetString("auth.jwt_secret"))

	token, err := jwt.ParseWithClaims(tokenString, &PlatformClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*PlatformClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	return claims, nil
}
