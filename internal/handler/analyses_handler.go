package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/service"
	"github.com/mcoelho/artwise/internal/storage"
)

// AnalysesHandler serves the stored-analysis browse surface: listing,
// search, stats and direct lookups. None of this participates in the cache
// contract — substring search here is explicitly a browse capability.
type AnalysesHandler struct {
	repo            storage.AnalysisRepository
	analysisService *service.AnalysisService
	logger          *zap.Logger
}

// NewAnalysesHandler creates a new AnalysesHandler.
func NewAnalysesHandler(repo storage.AnalysisRepository, analysisService *service.AnalysisService, logger *zap.Logger) *AnalysesHandler {
	return &AnalysesHandler{
		repo:            repo,
		analysisService: analysisService,
		logger:          logger,
	}
}

// List returns a paginated page of analyses with optional substring filters.
// Route: GET /api/v1/analyses?page=1&limit=10&artwork_name=&artist=&style=
func (h *AnalysesHandler) List(c *gin.Context) {
	filter := storage.ListFilter{
		Page:        intQuery(c, "page", 1),
		Limit:       clamp(intQuery(c, "limit", 10), 1, 100),
		ArtworkName: c.Query("artwork_name"),
		Artist:      c.Query("artist"),
		Style:       c.Query("style"),
	}

	analyses, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": analyses,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

// Recent returns the newest analyses. Route: GET /api/v1/analyses/recent?limit=5
func (h *AnalysesHandler) Recent(c *gin.Context) {
	limit := clamp(intQuery(c, "limit", 5), 1, 20)

	analyses, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

// Search returns analyses whose name contains the query substring.
// Route: GET /api/v1/analyses/search?q=night
func (h *AnalysesHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, h.logger, service.ErrInvalidInput)
		return
	}

	analyses, err := h.repo.SearchByName(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": analyses})
}

// Stats returns aggregate counts. Route: GET /api/v1/analyses/stats
func (h *AnalysesHandler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Get returns a single analysis by id. Route: GET /api/v1/analyses/:id
// This is the one lookup that can answer 404 — the analyze flows never do.
func (h *AnalysesHandler) Get(c *gin.Context) {
	analysis, err := h.analysisService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Delete removes an analysis. Admin-only. Route: DELETE /api/v1/analyses/:id
func (h *AnalysesHandler) Delete(c *gin.Context) {
	if err := h.analysisService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "analysis deleted"})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
