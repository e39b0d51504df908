package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/api/handlers"
	"github.com/uniassets/assetcart/internal/api/middleware"
	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/internal/repository"
	"github.com/uniassets/assetcart/internal/service"
)

// Dependencies groups what the HTTP layer needs
type Dependencies struct {
	Repos    *repository.Repositories
	Sessions *service.CartSessions
	Products handlers.ProductResolver
	Requests handlers.RequestTracker
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":       "ok",
			"active_carts": deps.Sessions.Active(),
		})
	})

	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.Repos, logger))
	{
		cart := v1.Group("/cart")
		{
			cart.GET("", handlers.HandleGetCart(deps.Sessions))
			cart.DELETE("", handlers.HandleClearCart(deps.Sessions))
			cart.POST("/items", handlers.HandleAddItem(deps.Sessions, deps.Products, logger))
			cart.PATCH("/items/:lineId", handlers.HandleUpdateLine(deps.Sessions, logger))
			cart.DELETE("/items/:lineId", handlers.HandleRemoveLine(deps.Sessions))
			cart.PUT("/request", handlers.HandleUpdateRequestInfo(deps.Sessions))
			cart.GET("/products/:productId", handlers.HandleGetProductInCart(deps.Sessions))
			cart.POST("/submit", handlers.HandleSubmitCart(deps.Sessions, deps.Requests, logger))
		}

		v1.GET("/requests/:id", handlers.HandleGetRequest(deps.Requests, logger))
		v1.POST("/session/logout", handlers.HandleLogout(deps.Sessions))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
