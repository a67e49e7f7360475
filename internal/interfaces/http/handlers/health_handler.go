package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/obsdemo/internal/application/dto"
	"github.com/turtacn/obsdemo/internal/application/service"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	demo service.DemoAppService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(demo service.DemoAppService) *HealthHandler {
	return &HealthHandler{demo: demo}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Reports that the process is up and serving.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := h.demo.Health(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewHealthResponse(status))
}

// ReadinessCheck godoc
// @Summary      Readiness Check
// @Description  Checks if the service is ready to accept traffic.
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c) // the service has no dependencies to wait for
}
