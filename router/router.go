// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/casewise/themis/api/controller"
	"github.com/casewise/themis/api/middleware"
	"github.com/casewise/themis/api/util"
)

func SetupRouter(
	controllers *controller.Controllers,
	auditRateLimit int,
	auditRateWindow time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.AuthMiddleware())

	api := router.Group("/api/v1")

	controllers.Access.RegisterRoutes(api)
	controllers.Attribute.RegisterRoutes(api)
	controllers.Vault.RegisterRoutes(api)
	controllers.Credential.RegisterRoutes(api)

	// The audit report carries its own per-principal limiter; the rest of the
	// API is not rate limited.
	auditLimiter := util.NewFixedWindowLimiter()
	auditAPI := router.Group("/api/v1")
	auditAPI.Use(middleware.RateLimiter(auditLimiter, auditRateLimit, auditRateWindow))
	controllers.Audit.RegisterRoutes(auditAPI)

	return router
}
