package dto

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/obsdemo/internal/domain/models"
	"github.com/turtacn/obsdemo/pkg/errors"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DirectoryResponse lists the public routes.
type DirectoryResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

// DataItemDTO is one element of DataResponse.
type DataItemDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DataResponse is the body of GET /api/data.
type DataResponse struct {
	Timestamp float64       `json:"timestamp"`
	Data      []DataItemDTO `json:"data"`
}

// RandomResponse is the body of GET /api/random.
type RandomResponse struct {
	RandomNumber int     `json:"random_number"`
	Timestamp    float64 `json:"timestamp"`
}

func NewDirectoryResponse(d *models.RouteDirectory) *DirectoryResponse {
	return &DirectoryResponse{Message: d.Message, Endpoints: d.Endpoints}
}

func NewHealthResponse(h *models.HealthStatus) *HealthResponse {
	return &HealthResponse{Status: h.Status, Timestamp: models.EpochSeconds(h.CheckedAt)}
}

func NewDataResponse(d *models.SampleData) *DataResponse {
	items := make([]DataItemDTO, len(d.Items))
	for i, it := range d.Items {
		items[i] = DataItemDTO{ID: it.ID, Name: it.Name, Value: it.Value}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return &DataResponse{Timestamp: models.EpochSeconds(d.GeneratedAt), Data: items}
}

func NewRandomResponse(r *models.RandomNumber) *RandomResponse {
	return &RandomResponse{RandomNumber: r.Value, Timestamp: models.EpochSeconds(r.GeneratedAt)}
}

// SendError aborts the request with the status and message mapped from err.
func SendError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), ErrorResponse{Error: errors.PublicMessage(err)})
}
