// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context).
// Handlers stay thin: they validate the transport shape, call the service,
// and map pipeline errors to HTTP statuses. All pipeline semantics live in
// the service layer.
package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mcoelho/artwise/internal/gateway"
	"github.com/mcoelho/artwise/internal/model"
	"github.com/mcoelho/artwise/internal/service"
	"github.com/mcoelho/artwise/internal/storage"
)

// AnalyzeHandler handles the two resolve-or-generate entry points.
type AnalyzeHandler struct {
	analysisService *service.AnalysisService
	logger          *zap.Logger
}

// NewAnalyzeHandler creates a new AnalyzeHandler.
func NewAnalyzeHandler(analysisService *service.AnalysisService, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		analysisService: analysisService,
		logger:          logger,
	}
}

// analyzeByNameRequest is the JSON body for the name entry point.
type analyzeByNameRequest struct {
	ArtworkName string `json:"artwork_name" binding:"required"`
}

// analysisResponse flattens an analysis and adds the cached flag.
// Struct embedding merges the Analysis fields into the same JSON object.
type analysisResponse struct {
	*model.Analysis
	Cached bool `json:"cached"`
}

// ByName analyzes an artwork by name, checking the cache first.
// Route: POST /api/v1/analyze/name
func (h *AnalyzeHandler) ByName(c *gin.Context) {
	var req analyzeByNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, service.ErrInvalidInput)
		return
	}

	result, err := h.analysisService.AnalyzeByName(c.Request.Context(), req.ArtworkName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysisResponse{Analysis: result.Analysis, Cached: result.Cached})
}

// ByImage analyzes an uploaded artwork image through the multi-stage cache
// pipeline. Route: POST /api/v1/analyze/image (multipart field "file")
func (h *AnalyzeHandler) ByImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, h.logger, service.ErrInvalidInput)
		return
	}

	opened, err := file.Open()
	if err != nil {
		respondError(c, h.logger, service.ErrInvalidInput)
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		respondError(c, h.logger, service.ErrInvalidInput)
		return
	}

	// The service validates declared type and size before hashing anything.
	result, err := h.analysisService.AnalyzeByImage(c.Request.Context(), data, file.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, analysisResponse{Analysis: result.Analysis, Cached: result.Cached})
}

// respondError maps the pipeline error taxonomy onto HTTP. Clients get a
// structured kind + message; internal detail stays in the logs.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind, status, message := "internal", http.StatusInternalServerError, "internal error"

	switch {
	case errors.Is(err, service.ErrUnsupportedType):
		kind, status, message = "invalid_input", http.StatusUnsupportedMediaType, "unsupported image content type"
	case errors.Is(err, service.ErrPayloadTooLarge):
		kind, status, message = "payload_too_large", http.StatusRequestEntityTooLarge, "image exceeds the maximum allowed size"
	case errors.Is(err, service.ErrInvalidInput):
		kind, status, message = "invalid_input", http.StatusBadRequest, "invalid request input"
	case errors.Is(err, gateway.ErrGenerationUnavailable):
		kind, status, message = "generation_unavailable", http.StatusServiceUnavailable, "the interpretation service is temporarily unavailable"
	case errors.Is(err, service.ErrPersistenceFailed):
		kind, status, message = "persistence_failed", http.StatusInternalServerError, "the interpretation could not be saved"
	case errors.Is(err, storage.ErrNotFound):
		kind, status, message = "not_found", http.StatusNotFound, "analysis not found"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("kind", kind), zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.String("kind", kind), zap.Error(err))
	}

	c.JSON(status, gin.H{"error": gin.H{"kind": kind, "message": message}})
}
