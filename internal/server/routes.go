// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/config"
	"github.com/mcoelho/artwise/internal/handler"
	"github.com/mcoelho/artwise/internal/middleware"
	"github.com/mcoelho/artwise/internal/service"
	"github.com/mcoelho/artwise/internal/storage"
)

// Deps carries the long-lived collaborators constructed once at process
// start. In Go, we pass dependencies explicitly — no DI container, no magic.
// Each handler gets exactly the dependencies it needs.
type Deps struct {
	DB              *sqlx.DB
	AnalysisRepo    storage.AnalysisRepository
	AnalysisService *service.AnalysisService
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.DB)
	analyzeHandler := handler.NewAnalyzeHandler(deps.AnalysisService, logger)
	analysesHandler := handler.NewAnalysesHandler(deps.AnalysisRepo, deps.AnalysisService, logger)

	// Public endpoint (no CORS group needed)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS and rate limiting apply to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		api.POST("/analyze/name", analyzeHandler.ByName)
		api.POST("/analyze/image", analyzeHandler.ByImage)

		api.GET("/analyses", analysesHandler.List)
		api.GET("/analyses/recent", analysesHandler.Recent)
		api.GET("/analyses/search", analysesHandler.Search)
		api.GET("/analyses/stats", analysesHandler.Stats)
		api.GET("/analyses/:id", analysesHandler.Get)
	}

	// Destructive admin route (separate auth with admin keys)
	admin := api.Group("")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.DELETE("/analyses/:id", analysesHandler.Delete)
	}
}
