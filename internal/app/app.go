// Package app wires the obsdemo service together: configuration in, a running
// HTTP server with metrics, tracing and logging out.
package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	appservice "github.com/turtacn/obsdemo/internal/application/service"
	"github.com/turtacn/obsdemo/internal/config"
	domainservice "github.com/turtacn/obsdemo/internal/domain/service"
	"github.com/turtacn/obsdemo/internal/infrastructure/monitoring"
	apihttp "github.com/turtacn/obsdemo/internal/interfaces/http"
	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/logger"
)

// App holds the process-wide components, built once and injected.
type App struct {
	cfg      *config.Config
	logger   logger.Logger
	tracing  *monitoring.TracingManager
	registry *monitoring.Registry
	metrics  *monitoring.Metrics
	router   *apihttp.Router
}

type options struct {
	logger logger.Logger
	random domainservice.RandomSource
	clock  domainservice.Clock
}

// Option overrides a default collaborator, mostly for tests.
type Option func(*options)

// WithLogger replaces the zap logger built from cfg.Log.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithRandomSource replaces the runtime-seeded random source.
func WithRandomSource(r domainservice.RandomSource) Option {
	return func(o *options) { o.random = r }
}

// WithClock replaces the wall clock.
func WithClock(c domainservice.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New builds every component from cfg. Nothing is listening yet.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{
		random: domainservice.NewRandomSource(),
		clock:  domainservice.SystemClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		var err error
		if log, err = monitoring.NewZapLogger(&cfg.Log); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, cfg.Server.Environment, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := monitoring.NewRegistry(cfg.Metrics.RuntimeCollectors)
	metrics, err := monitoring.NewMetrics(registry, &cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to declare metrics: %w", err)
	}
	metrics.SetAppInfo(cfg.Metrics.Version, cfg.Server.Environment)

	demo := appservice.NewDemoAppService(o.random, o.clock, metrics, appservice.DemoConfig{
		DataDelayMin: cfg.Demo.DataDelayMin,
		DataDelayMax: cfg.Demo.DataDelayMax,
	}, log)

	router := apihttp.NewRouter(apihttp.RouterDependencies{
		Config:      &cfg.Server,
		Logger:      log,
		Tracer:      tracing.Tracer(),
		Metrics:     metrics,
		Exposition:  registry.Handler(),
		DemoService: demo,
	})
	router.SetupRoutes()

	return &App{
		cfg:      cfg,
		logger:   log,
		tracing:  tracing,
		registry: registry,
		metrics:  metrics,
		router:   router,
	}, nil
}

// Handler returns the fully instrumented HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router.Engine()
}

// Metrics returns the service metrics.
func (a *App) Metrics() *monitoring.Metrics {
	return a.metrics
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}

// Run serves on the configured address until ctx is cancelled, then drains
// in-flight requests within server.shutdown_timeout.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info(ctx, fmt.Sprintf("Starting %s on %s", constants.ServiceName, a.cfg.Server.Address()),
		logger.Fields{"environment": a.cfg.Server.Environment, "version": a.cfg.Metrics.Version})
	return a.run(ctx, a.router.Start)
}

// RunListener is Run on an existing listener.
func (a *App) RunListener(ctx context.Context, l net.Listener) error {
	return a.run(ctx, func() error { return a.router.Serve(l) })
}

func (a *App) run(ctx context.Context, serve func() error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(serve)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := a.router.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		a.logger.Info(shutdownCtx, "HTTP server stopped")
		return nil
	})

	return g.Wait()
}

// Close flushes the tracer and the log sinks.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	if err := a.tracing.Shutdown(ctx); err != nil {
		firstErr = err
	}
	_ = a.logger.Sync()
	if c, ok := a.logger.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
