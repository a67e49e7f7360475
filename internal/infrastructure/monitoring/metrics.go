package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/obsdemo/internal/config"
	"github.com/turtacn/obsdemo/pkg/constants"
)

// Metric names relative to the configured namespace.
const (
	MetricRequestsTotal   = "http_requests_total"
	MetricRequestDuration = "http_request_duration_seconds"
	MetricActiveRequests  = "http_active_requests"
	MetricErrorsTotal     = "errors_total"
	MetricAppInfo         = "app_info"
)

// Metrics manages the Prometheus metrics of the HTTP service.
// Every family is declared once at construction; the typed methods below
// fix the label arity so no call site can supply the wrong number of values.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  prometheus.Gauge
	ErrorsTotal     *prometheus.CounterVec
	AppInfo         *prometheus.GaugeVec

	names map[string]string
}

// NewMetrics declares the service metrics on reg.
func NewMetrics(reg *Registry, cfg *config.MetricsConfig) (*Metrics, error) {
	ns := cfg.Namespace
	m := &Metrics{names: make(map[string]string)}
	fq := func(name string) string {
		full := prometheus.BuildFQName(ns, "", name)
		m.names[name] = full
		return full
	}

	var err error
	if m.RequestsTotal, err = reg.DeclareCounter(fq(MetricRequestsTotal),
		"Total number of HTTP requests.", "method", "endpoint", "status"); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = reg.DeclareHistogram(fq(MetricRequestDuration),
		"HTTP request duration in seconds.", cfg.Buckets, "method", "endpoint"); err != nil {
		return nil, err
	}
	active, err := reg.DeclareGauge(fq(MetricActiveRequests), "Number of in-flight HTTP requests.")
	if err != nil {
		return nil, err
	}
	m.ActiveRequests = active.WithLabelValues()
	if m.ErrorsTotal, err = reg.DeclareCounter(fq(MetricErrorsTotal),
		"Total number of application errors.", "endpoint"); err != nil {
		return nil, err
	}
	// Known label values start at zero so the family is always exported.
	for _, endpoint := range []string{constants.RouteError, constants.ErrorEndpointInternal} {
		m.ErrorsTotal.WithLabelValues(endpoint)
	}
	if m.AppInfo, err = reg.DeclareGauge(fq(MetricAppInfo),
		"Application information.", "version", "environment"); err != nil {
		return nil, err
	}

	return m, nil
}

// Name returns the fully qualified name of a metric declared by NewMetrics.
func (m *Metrics) Name(metric string) string {
	return m.names[metric]
}

// RequestStarted marks a request as in flight.
func (m *Metrics) RequestStarted() {
	m.ActiveRequests.Inc()
}

// RequestFinished records the duration and outcome of a request and
// removes it from the in-flight gauge.
func (m *Metrics) RequestFinished(method, endpoint string, status int, elapsed time.Duration) {
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
	m.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.ActiveRequests.Dec()
}

// RecordError increments the application error counter for endpoint.
func (m *Metrics) RecordError(endpoint string) {
	m.ErrorsTotal.WithLabelValues(endpoint).Inc()
}

// SetAppInfo publishes the build/environment info gauge.
func (m *Metrics) SetAppInfo(version, environment string) {
	m.AppInfo.WithLabelValues(version, environment).Set(1)
}
