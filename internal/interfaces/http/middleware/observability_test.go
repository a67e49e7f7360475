package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/obsdemo/internal/config"
	"github.com/turtacn/obsdemo/internal/infrastructure/monitoring"
	"github.com/turtacn/obsdemo/internal/interfaces/http/middleware"
)

type harness struct {
	engine   *gin.Engine
	registry *monitoring.Registry
	metrics  *monitoring.Metrics
	spans    *tracetest.SpanRecorder
	logs     *observer.ObservedLogs
}

func newHarness(t *testing.T, withRecovery bool) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := monitoring.NewRegistry(false)
	m, err := monitoring.NewMetrics(reg, &config.MetricsConfig{Namespace: "test"})
	require.NoError(t, err)

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	core, logs := observer.New(zapcore.InfoLevel)
	log := monitoring.NewLoggerFromCore(core)

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.ObservabilityMiddleware(tp.Tracer("test"), m, log))
	if withRecovery {
		engine.Use(middleware.RecoveryMiddleware(log, m))
	}
	engine.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	engine.GET("/bad", func(c *gin.Context) { c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request"}) })
	engine.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	engine.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	engine.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "Not found"}) })

	return &harness{engine: engine, registry: reg, metrics: m, spans: spans, logs: logs}
}

func (h *harness) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	h.engine.ServeHTTP(w, req)
	return w
}

func (h *harness) requests(method, route, status string) float64 {
	return testutil.ToFloat64(h.metrics.RequestsTotal.WithLabelValues(method, route, status))
}

// observations returns the histogram sample count for (method, route).
func (h *harness) observations(t *testing.T, method, route string) uint64 {
	t.Helper()
	families, err := h.registry.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != h.metrics.Name(monitoring.MetricRequestDuration) {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, map[string]string{"method": method, "endpoint": route}) {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := make(map[string]string)
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestObservabilityMiddleware_SuccessfulRequest(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(http.MethodGet, "/ok")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, h.requests("GET", "/ok", "200"))
	assert.Equal(t, uint64(1), h.observations(t, "GET", "/ok"))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ActiveRequests))

	entries := h.logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Incoming request: GET /ok from 192.0.2.1", entries[0].Message)
	assert.Equal(t, "Request completed: GET /ok - Status: 200", entries[1].Message)
	assert.Equal(t, w.Header().Get("X-Request-ID"), entries[0].ContextMap()["request_id"])
	assert.NotEmpty(t, entries[1].ContextMap()["trace_id"])

	ended := h.spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /ok", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.Int("http.status_code", 200))
}

func TestObservabilityMiddleware_RouteTemplateLabels(t *testing.T) {
	h := newHarness(t, true)

	h.do(http.MethodGet, "/items/1")
	h.do(http.MethodGet, "/items/2")

	assert.Equal(t, 2.0, h.requests("GET", "/items/:id", "204"))
	assert.Equal(t, uint64(2), h.observations(t, "GET", "/items/:id"))
}

func TestObservabilityMiddleware_ErrorResponse(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(http.MethodGet, "/bad")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1.0, h.requests("GET", "/bad", "400"))
	assert.Equal(t, 0.0, h.requests("GET", "/bad", "200"))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ActiveRequests))
}

func TestObservabilityMiddleware_UnmatchedRoute(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(http.MethodGet, "/does-not-exist")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1.0, h.requests("GET", "unknown", "404"))
	assert.Equal(t, uint64(1), h.observations(t, "GET", "unknown"))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ActiveRequests))
}

func TestObservabilityMiddleware_RecoveredFault(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(http.MethodGet, "/boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.Equal(t, 1.0, h.requests("GET", "/boom", "500"))
	assert.Equal(t, uint64(1), h.observations(t, "GET", "/boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.ErrorsTotal.WithLabelValues("internal")))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ActiveRequests))

	errorLogs := h.logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errorLogs, 1)
	assert.Contains(t, errorLogs[0].ContextMap()["error"], "kaboom")

	completed := h.logs.FilterMessage("Request completed: GET /boom - Status: 500").Len()
	assert.Equal(t, 1, completed)
}

func TestObservabilityMiddleware_EscapingFaultStillRecorded(t *testing.T) {
	h := newHarness(t, false)

	assert.PanicsWithValue(t, "kaboom", func() {
		h.do(http.MethodGet, "/boom")
	})

	assert.Equal(t, 1.0, h.requests("GET", "/boom", "500"))
	assert.Equal(t, uint64(1), h.observations(t, "GET", "/boom"))
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ActiveRequests))
	require.Len(t, h.spans.Ended(), 1)
}

func TestObservabilityMiddleware_ActiveGaugeTracksInFlight(t *testing.T) {
	h := newHarness(t, true)
	release := make(chan struct{})
	h.engine.GET("/slow", func(c *gin.Context) {
		<-release
		c.Status(http.StatusOK)
	})

	const inFlight = 8
	var wg sync.WaitGroup
	wg.Add(inFlight)
	for i := 0; i < inFlight; i++ {
		go func() {
			defer wg.Done()
			h.do(http.MethodGet, "/slow")
		}()
	}

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(h.metrics.ActiveRequests) == inFlight
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	wg.Wait()

	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.ActiveRequests))
	assert.Equal(t, float64(inFlight), h.requests("GET", "/slow", "200"))
	assert.Equal(t, uint64(inFlight), h.observations(t, "GET", "/slow"))
}
