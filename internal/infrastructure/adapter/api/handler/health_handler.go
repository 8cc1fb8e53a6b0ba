package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthReporter reports whether the backing store is reachable.
type HealthReporter interface {
	Healthy() bool
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	reporter HealthReporter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(reporter HealthReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	if h.reporter == nil || !h.reporter.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
