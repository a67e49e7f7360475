package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/obsdemo/internal/config"
)

func newTestMetrics(t *testing.T) (*Registry, *Metrics) {
	t.Helper()
	reg := NewRegistry(false)
	m, err := NewMetrics(reg, &config.MetricsConfig{Namespace: "test"})
	require.NoError(t, err)
	return reg, m
}

func TestNewMetrics_DeclaresFamilies(t *testing.T) {
	reg, m := newTestMetrics(t)

	assert.Equal(t, []string{
		"test_app_info",
		"test_errors_total",
		"test_http_active_requests",
		"test_http_request_duration_seconds",
		"test_http_requests_total",
	}, reg.Names())
	assert.Equal(t, "test_http_requests_total", m.Name(MetricRequestsTotal))
}

func TestNewMetrics_RejectsSecondDeclaration(t *testing.T) {
	reg, _ := newTestMetrics(t)
	_, err := NewMetrics(reg, &config.MetricsConfig{Namespace: "test"})
	assert.ErrorIs(t, err, ErrMetricAlreadyDeclared)
}

func TestMetrics_RequestLifecycle(t *testing.T) {
	reg, m := newTestMetrics(t)

	m.RequestStarted()
	m.RequestStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ActiveRequests))

	m.RequestFinished("GET", "/health", 200, 15*time.Millisecond)
	m.RequestFinished("GET", "/health", 500, 5*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "500")))

	// Resolving through the generic registry yields the same samples.
	c, err := reg.Counter(m.Name(MetricRequestsTotal), "GET", "/health", "200")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c))

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestMetrics_ErrorsAndInfo(t *testing.T) {
	_, m := newTestMetrics(t)

	// Known endpoints are exported before the first error.
	assert.Equal(t, 2, testutil.CollectAndCount(m.ErrorsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("internal")))

	m.RecordError("/api/error")
	m.RecordError("/api/error")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("/api/error")))

	m.SetAppInfo("1.0.0", "test")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AppInfo.WithLabelValues("1.0.0", "test")))
}
