// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	themis_errors "github.com/casewise/themis/api/errors"
	logger "github.com/casewise/themis/api/logging"
)

// RespondWithError logs the internal error and returns only the generic
// message to the caller. Internal reasons never travel past this boundary.
func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetUserIDFromContext returns the verified caller identity set by the auth
// middleware.
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", themis_errors.ErrUnauthenticated
	}
	return userID.(string), nil
}

// GetUserRoleFromContext returns the verified caller role set by the auth
// middleware. An absent role is treated as the empty role, never elevated.
func GetUserRoleFromContext(c *gin.Context) string {
	role, exists := c.Get("userRole")
	if !exists {
		return ""
	}
	return role.(string)
}
