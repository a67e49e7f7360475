package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/obsdemo/pkg/constants"
	"github.com/turtacn/obsdemo/pkg/logger"
)

// RequestMetrics receives the two instrumentation phases of every request.
// RequestMetrics 接收每个请求的两个埋点阶段。
type RequestMetrics interface {
	RequestStarted()
	RequestFinished(method, endpoint string, status int, elapsed time.Duration)
}

// ObservabilityMiddleware returns a Gin middleware that integrates Prometheus metrics,
// OpenTelemetry tracing and request logging.
// ObservabilityMiddleware 返回一个集成了 Prometheus 指标、OpenTelemetry 跟踪和请求日志的 Gin 中间件。
//
// The pre-phase starts the timer and span, marks the request active and logs its arrival.
// The post-phase is deferred, so it runs exactly once whether the rest of the chain
// returns normally or panics: it records duration and outcome, releases the active
// gauge, ends the span and logs completion. Faults should be converted to responses
// by RecoveryMiddleware registered after this one; a panic that still escapes is
// recorded as a 500 and re-raised.
func ObservabilityMiddleware(tracer trace.Tracer, metrics RequestMetrics, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		clientIP := c.ClientIP()
		// Use c.FullPath() to get the route template for low-cardinality labels.
		route := c.FullPath()
		if route == "" {
			route = constants.RouteUnknown
		}

		ctx, span := tracer.Start(c.Request.Context(), method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.route", route),
				attribute.String("http.client_ip", clientIP),
			),
		)
		c.Request = c.Request.WithContext(ctx)

		metrics.RequestStarted()
		log.Info(ctx, fmt.Sprintf("Incoming request: %s %s from %s", method, path, clientIP), logger.Fields{
			"method":      method,
			"path":        path,
			"remote_addr": clientIP,
		})

		defer func() {
			fault := recover()
			status := c.Writer.Status()
			if fault != nil {
				status = http.StatusInternalServerError
			}
			elapsed := time.Since(start)

			metrics.RequestFinished(method, route, status, elapsed)

			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.End()

			log.Info(ctx, fmt.Sprintf("Request completed: %s %s - Status: %d", method, path, status), logger.Fields{
				"method":     method,
				"path":       path,
				"route":      route,
				"status":     status,
				"latency_ms": elapsed.Milliseconds(),
			})

			if fault != nil {
				panic(fault)
			}
		}()

		c.Next()
	}
}
