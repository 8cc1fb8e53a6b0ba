package routes

import (
	coreport "github.com/amirhossein-jamali/trn-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/trn-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, trnHandler *handler.TrnHandler, healthHandler *handler.HealthHandler) {
	// GET /health
	router.GET("/health", healthHandler.Check)

	// Portfolio-scoped routes
	portfolioRoutes := router.Group("/portfolio")
	{
		// POST /portfolio/:portfolioId/trn
		portfolioRoutes.POST("/:portfolioId/trn", trnHandler.Submit)

		// GET /portfolio/:portfolioId/ladder
		portfolioRoutes.GET("/:portfolioId/ladder", trnHandler.CashLadder)

		// GET /portfolio/:portfolioId/trn/export
		portfolioRoutes.GET("/:portfolioId/trn/export", trnHandler.Export)
	}

	// Lifecycle routes
	trnRoutes := router.Group("/trn")
	{
		// POST /trn/settle
		trnRoutes.POST("/settle", trnHandler.Settle)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	// Apply middlewares in the correct order
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
