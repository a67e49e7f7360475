package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/turtacn/obsdemo/internal/application/service"
	"github.com/turtacn/obsdemo/internal/config"
	domainservice "github.com/turtacn/obsdemo/internal/domain/service"
	"github.com/turtacn/obsdemo/internal/interfaces/http/handlers"
	"github.com/turtacn/obsdemo/internal/interfaces/http/middleware"
	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/logger"
)

// RouteMetrics is what the router needs from the metrics layer: the request
// lifecycle hooks and the error counter.
type RouteMetrics interface {
	middleware.RequestMetrics
	domainservice.Metrics
}

// RouterDependencies collects everything the HTTP surface is built from.
type RouterDependencies struct {
	Config      *config.ServerConfig
	Logger      logger.Logger
	Tracer      trace.Tracer
	Metrics     RouteMetrics
	Exposition  http.Handler
	DemoService service.DemoAppService
}

// Router owns the gin engine and the HTTP server around it.
type Router struct {
	engine         *gin.Engine
	config         *config.ServerConfig
	logger         logger.Logger
	tracer         trace.Tracer
	metrics        RouteMetrics
	demoHandler    *handlers.DemoHandler
	healthHandler  *handlers.HealthHandler
	metricsHandler *handlers.MetricsHandler
	server         *http.Server
}

// NewRouter creates the router. Routes are installed by SetupRoutes.
func NewRouter(deps RouterDependencies) *Router {
	if deps.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(constants.ServiceName)
	}

	engine := gin.New()
	// Log the peer address, not a client-supplied X-Forwarded-For.
	_ = engine.SetTrustedProxies(nil)
	r := &Router{
		engine:         engine,
		config:         deps.Config,
		logger:         deps.Logger,
		tracer:         tracer,
		metrics:        deps.Metrics,
		demoHandler:    handlers.NewDemoHandler(deps.DemoService, deps.Logger),
		healthHandler:  handlers.NewHealthHandler(deps.DemoService),
		metricsHandler: handlers.NewMetricsHandler(deps.Exposition),
	}
	r.server = &http.Server{
		Addr:           deps.Config.Address(),
		Handler:        engine,
		ReadTimeout:    time.Duration(deps.Config.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(deps.Config.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(deps.Config.IdleTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
	return r
}

// SetupRoutes installs the middleware chain and every route.
func (r *Router) SetupRoutes() {
	// Recovery sits inside the instrumentation so a recovered fault is
	// observed with its final 500 status.
	r.engine.Use(middleware.RequestIDMiddleware())
	r.engine.Use(middleware.ObservabilityMiddleware(r.tracer, r.metrics, r.logger))
	r.engine.Use(middleware.RecoveryMiddleware(r.logger, r.metrics))
	if len(r.config.AllowedOrigins) > 0 {
		r.engine.Use(cors.New(r.corsConfig()))
	}

	r.engine.GET(constants.RouteIndex, r.demoHandler.Index)
	r.engine.GET(constants.RouteHealth, r.healthHandler.HealthCheck)
	r.engine.GET(constants.RouteReady, r.healthHandler.ReadinessCheck)
	r.engine.GET(constants.RouteMetrics, r.metricsHandler.Metrics)

	api := r.engine.Group("/api")
	{
		api.GET("/data", r.demoHandler.GetData)
		api.GET("/random", r.demoHandler.GetRandom)
		api.GET("/error", r.demoHandler.TriggerError)
	}

	if r.config.PprofEnabled {
		pprof.Register(r.engine)
	}

	r.engine.NoRoute(r.demoHandler.NotFound)
}

func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", constants.HeaderRequestID},
		ExposeHeaders: []string{constants.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(r.config.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.config.AllowedOrigins
		cfg.AllowCredentials = true
	}
	return cfg
}

// Engine exposes the configured gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start listens on the configured address and serves until Stop is called.
func (r *Router) Start() error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": r.server.Addr})
	return ignoreClosed(r.server.ListenAndServe())
}

// Serve serves on an existing listener until Stop is called.
func (r *Router) Serve(l net.Listener) error {
	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{"address": l.Addr().String()})
	return ignoreClosed(r.server.Serve(l))
}

// Stop drains in-flight requests and stops the server.
func (r *Router) Stop(ctx context.Context) error {
	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
