package service

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/obsdemo/internal/domain/models"
	domainservice "github.com/turtacn/obsdemo/internal/domain/service"
	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/errors"
	"github.com/turtacn/obsdemo/pkg/logger"
)

// DemoAppService implements the behaviour behind the demo endpoints.
type DemoAppService interface {
	Directory(ctx context.Context) *models.RouteDirectory
	Health(ctx context.Context) *models.HealthStatus
	SampleData(ctx context.Context) *models.SampleData
	RandomNumber(ctx context.Context) *models.RandomNumber
	// SimulateError records an error for the error endpoint and returns one of
	// the simulated application errors, chosen uniformly.
	SimulateError(ctx context.Context) error
}

// DemoConfig bounds the simulated work of SampleData.
type DemoConfig struct {
	DataDelayMin time.Duration
	DataDelayMax time.Duration
}

type demoAppServiceImpl struct {
	random  domainservice.RandomSource
	clock   domainservice.Clock
	metrics domainservice.Metrics
	cfg     DemoConfig
	log     logger.Logger
}

// NewDemoAppService creates the demo service.
func NewDemoAppService(
	random domainservice.RandomSource,
	clock domainservice.Clock,
	metrics domainservice.Metrics,
	cfg DemoConfig,
	log logger.Logger,
) DemoAppService {
	return &demoAppServiceImpl{
		random:  random,
		clock:   clock,
		metrics: metrics,
		cfg:     cfg,
		log:     log,
	}
}

var routeDescriptions = map[string]string{
	constants.RouteIndex:   "Home page",
	constants.RouteHealth:  "Health check",
	constants.RouteMetrics: "Prometheus metrics",
	constants.RouteData:    "Sample data endpoint",
	constants.RouteRandom:  "Random number generator",
	constants.RouteError:   "Trigger an error (for testing)",
}

// simulatedErrors is indexed by a uniform draw.
var simulatedErrors = []errors.AppError{
	errors.ErrInternalServer,
	errors.ErrResourceNotFound,
	errors.ErrBadRequest,
}

func (s *demoAppServiceImpl) Directory(ctx context.Context) *models.RouteDirectory {
	s.log.Info(ctx, "Home endpoint accessed")
	endpoints := make(map[string]string, len(routeDescriptions))
	for route, desc := range routeDescriptions {
		endpoints[route] = desc
	}
	return &models.RouteDirectory{
		Message:   "Welcome to the obsdemo observability service",
		Endpoints: endpoints,
	}
}

func (s *demoAppServiceImpl) Health(ctx context.Context) *models.HealthStatus {
	s.log.Info(ctx, "Health check performed")
	return &models.HealthStatus{
		Status:    models.HealthStatusHealthy,
		CheckedAt: s.clock.Now(),
	}
}

func (s *demoAppServiceImpl) SampleData(ctx context.Context) *models.SampleData {
	s.log.Info(ctx, "Data endpoint accessed")

	delay := domainservice.DurationBetween(s.random, s.cfg.DataDelayMin, s.cfg.DataDelayMax)
	s.clock.Sleep(delay)

	items := make([]models.DataItem, constants.DataItemCount)
	for i := range items {
		items[i] = models.DataItem{
			ID:    i + 1,
			Name:  fmt.Sprintf("Item %d", i+1),
			Value: domainservice.IntBetween(s.random, constants.DataValueMin, constants.DataValueMax),
		}
	}

	s.log.Info(ctx, fmt.Sprintf("Returning data with %d items", len(items)), logger.Fields{
		"delay_ms": delay.Milliseconds(),
	})
	return &models.SampleData{
		GeneratedAt: s.clock.Now(),
		Items:       items,
	}
}

func (s *demoAppServiceImpl) RandomNumber(ctx context.Context) *models.RandomNumber {
	n := domainservice.IntBetween(s.random, constants.RandomNumberMin, constants.RandomNumberMax)
	s.log.Info(ctx, fmt.Sprintf("Generated random number: %d", n))
	return &models.RandomNumber{
		Value:       n,
		GeneratedAt: s.clock.Now(),
	}
}

func (s *demoAppServiceImpl) SimulateError(ctx context.Context) error {
	s.log.Error(ctx, "Error endpoint triggered - simulating application error", nil)
	s.metrics.RecordError(constants.RouteError)

	err := simulatedErrors[s.random.IntN(len(simulatedErrors))]
	if err.HTTPStatus() >= 500 {
		s.log.Error(ctx, fmt.Sprintf("Simulating %d %s", err.HTTPStatus(), errors.PublicMessage(err)), nil)
	} else {
		s.log.Warn(ctx, fmt.Sprintf("Simulating %d %s", err.HTTPStatus(), errors.PublicMessage(err)))
	}
	return err
}
