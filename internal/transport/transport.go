package transport

import (
	"time"

	"github.com/toolsinn/shortlinks/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

func InitRoutes(linkHandler *LinkHandler, analyticsHandler *AnalyticsHandler, requestTimeout time.Duration) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(requestTimeout))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "shortlinks",
			"message": "POST /shorten to create a device-aware short link",
		})
	})

	api := router.Group("/")
	linkHandler.RegisterRoutes(api)
	analyticsHandler.RegisterRoutes(api)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "shortlinks",
		})
	})

	// Any path without a declared route is a candidate short code.
	router.NoRoute(linkHandler.RedirectURL)

	return router
}
