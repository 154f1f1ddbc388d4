package http

import (
	"github.com/gin-gonic/gin"
	"github.com/precolista/backend/config"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		list := v1.Group("/list")
		{
			list.POST("/calculate", handler.CalculateList)
		}

		v1.GET("/search", handler.Search)
		v1.POST("/refresh", handler.Refresh)
		v1.GET("/status", handler.Status)
		v1.GET("/categories", handler.Categories)
	}

	return router
}
