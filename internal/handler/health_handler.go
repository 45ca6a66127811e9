package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz responds with service status, including store reachability.
func (h *HealthHandler) Healthz(c *gin.Context) {
	database := "connected"
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		database = "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "artwise",
		"database": database,
	})
}
