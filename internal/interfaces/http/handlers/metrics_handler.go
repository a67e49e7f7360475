package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes a metrics registry in the Prometheus text format.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps the exposition handler of a registry.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Metrics writes the current snapshot of every registered metric.
// GET /metrics
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.exposition.ServeHTTP(c.Writer, c.Request)
}
