package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/obsdemo/internal/application/dto"
	"github.com/turtacn/obsdemo/internal/application/service"
	"github.com/turtacn/obsdemo/pkg/errors"
	"github.com/turtacn/obsdemo/pkg/logger"
)

// DemoHandler serves the directory and the /api/* demo endpoints.
type DemoHandler struct {
	demo   service.DemoAppService
	logger logger.Logger
}

// NewDemoHandler creates a DemoHandler.
func NewDemoHandler(demo service.DemoAppService, log logger.Logger) *DemoHandler {
	return &DemoHandler{demo: demo, logger: log}
}

// Index lists the available endpoints.
// GET /
func (h *DemoHandler) Index(c *gin.Context) {
	dir := h.demo.Directory(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewDirectoryResponse(dir))
}

// GetData returns three sample items after a simulated delay.
// GET /api/data
func (h *DemoHandler) GetData(c *gin.Context) {
	data := h.demo.SampleData(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewDataResponse(data))
}

// GetRandom returns a random integer in [1, 1000].
// GET /api/random
func (h *DemoHandler) GetRandom(c *gin.Context) {
	n := h.demo.RandomNumber(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewRandomResponse(n))
}

// TriggerError always fails with one of the simulated errors.
// GET /api/error
func (h *DemoHandler) TriggerError(c *gin.Context) {
	err := h.demo.SimulateError(c.Request.Context())
	if err == nil {
		err = errors.ErrInternalServer
	}
	dto.SendError(c, err)
}

// NotFound answers requests that matched no route.
func (h *DemoHandler) NotFound(c *gin.Context) {
	h.logger.Warn(c.Request.Context(), fmt.Sprintf("404 error: %s", c.Request.URL.Path), logger.Fields{
		"method": c.Request.Method,
	})
	dto.SendError(c, errors.ErrRouteNotFound)
}
