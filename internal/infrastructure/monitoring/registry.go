package monitoring

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ErrMetricAlreadyDeclared is returned when a metric name is declared twice.
	ErrMetricAlreadyDeclared = stderrors.New("metric already declared")
	// ErrMetricNotDeclared is returned when looking up a name that was never declared.
	ErrMetricNotDeclared = stderrors.New("metric not declared")
	// ErrLabelCardinality is returned when label values do not match the declared label names.
	ErrLabelCardinality = stderrors.New("label values do not match declared labels")
)

// Registry owns a private Prometheus registry and indexes every declared
// metric by name so callers can resolve samples by (name, label values).
// Declarations happen at startup; lookups are safe for concurrent use.
type Registry struct {
	reg *prometheus.Registry

	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewRegistry creates an empty registry. With runtimeCollectors the Go
// runtime and process collectors are registered as well.
func NewRegistry(runtimeCollectors bool) *Registry {
	reg := prometheus.NewRegistry()
	if runtimeCollectors {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return &Registry{
		reg:        reg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// DeclareCounter registers a counter family with a fixed set of label names.
func (r *Registry) DeclareCounter(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	if err := r.declare(name, vec, func() { r.counters[name] = vec }); err != nil {
		return nil, err
	}
	return vec, nil
}

// DeclareHistogram registers a histogram family. Nil buckets fall back to prometheus.DefBuckets.
func (r *Registry) DeclareHistogram(name, help string, buckets []float64, labels ...string) (*prometheus.HistogramVec, error) {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	if err := r.declare(name, vec, func() { r.histograms[name] = vec }); err != nil {
		return nil, err
	}
	return vec, nil
}

// DeclareGauge registers a gauge family.
func (r *Registry) DeclareGauge(name, help string, labels ...string) (*prometheus.GaugeVec, error) {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	if err := r.declare(name, vec, func() { r.gauges[name] = vec }); err != nil {
		return nil, err
	}
	return vec, nil
}

func (r *Registry) declare(name string, c prometheus.Collector, index func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(name) {
		return fmt.Errorf("%w: %s", ErrMetricAlreadyDeclared, name)
	}
	if err := r.reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			return fmt.Errorf("%w: %s", ErrMetricAlreadyDeclared, name)
		}
		return fmt.Errorf("failed to register metric %s: %w", name, err)
	}
	index()
	return nil
}

func (r *Registry) exists(name string) bool {
	_, c := r.counters[name]
	_, h := r.histograms[name]
	_, g := r.gauges[name]
	return c || h || g
}

// Counter resolves the counter sample for labelValues.
func (r *Registry) Counter(name string, labelValues ...string) (prometheus.Counter, error) {
	r.mu.RLock()
	vec, ok := r.counters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: counter %s", ErrMetricNotDeclared, name)
	}
	c, err := vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return nil, fmt.Errorf("%w: counter %s: %v", ErrLabelCardinality, name, err)
	}
	return c, nil
}

// Histogram resolves the histogram sample for labelValues.
func (r *Registry) Histogram(name string, labelValues ...string) (prometheus.Observer, error) {
	r.mu.RLock()
	vec, ok := r.histograms[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: histogram %s", ErrMetricNotDeclared, name)
	}
	o, err := vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return nil, fmt.Errorf("%w: histogram %s: %v", ErrLabelCardinality, name, err)
	}
	return o, nil
}

// Gauge resolves the gauge sample for labelValues.
func (r *Registry) Gauge(name string, labelValues ...string) (prometheus.Gauge, error) {
	r.mu.RLock()
	vec, ok := r.gauges[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: gauge %s", ErrMetricNotDeclared, name)
	}
	g, err := vec.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return nil, fmt.Errorf("%w: gauge %s: %v", ErrLabelCardinality, name, err)
	}
	return g, nil
}

// Names returns every declared metric name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.counters)+len(r.histograms)+len(r.gauges))
	for n := range r.counters {
		names = append(names, n)
	}
	for n := range r.histograms {
		names = append(names, n)
	}
	for n := range r.gauges {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		Registry: r.reg,
	})
}
