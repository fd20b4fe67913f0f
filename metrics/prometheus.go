package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider adapts Provider to github.com/prometheus/client_golang,
// for production deployments that scrape /metrics instead of reading
// BasicProvider's in-memory snapshots. Grounded on the prometheus client
// usage in juju-juju and linkerd-linkerd2, both of which register
// instruments against a *prometheus.Registry the host process exposes over
// HTTP.
type PrometheusProvider struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	updowns    map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusProvider constructs a Provider that registers instruments
// against reg. Pass prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer.(*prometheus.Registry) to share the process
// default.
func NewPrometheusProvider(reg *prometheus.Registry) *PrometheusProvider {
	return &PrometheusProvider{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		updowns:    make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func labelNames(attrs map[string]string) []string {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	return names
}

// Counter implements Provider.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	cv, ok := p.counters[name]
	if !ok {
		cv = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: cfg.Description}, labelNames(cfg.Attributes))
		p.registry.MustRegister(cv)
		p.counters[name] = cv
	}
	return &promCounter{vec: cv, labels: cfg.Attributes}
}

// UpDownCounter implements Provider.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	gv, ok := p.updowns[name]
	if !ok {
		gv = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: cfg.Description}, labelNames(cfg.Attributes))
		p.registry.MustRegister(gv)
		p.updowns[name] = gv
	}
	return &promUpDownCounter{vec: gv, labels: cfg.Attributes}
}

// Histogram implements Provider.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	cfg := applyOptions(opts)
	p.mu.Lock()
	defer p.mu.Unlock()
	hv, ok := p.histograms[name]
	if !ok {
		hv = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: cfg.Description}, labelNames(cfg.Attributes))
		p.registry.MustRegister(hv)
		p.histograms[name] = hv
	}
	return &promHistogram{vec: hv, labels: cfg.Attributes}
}

type promCounter struct {
	vec    *prometheus.CounterVec
	labels map[string]string
}

func (c *promCounter) Add(n int64) { c.vec.With(prometheus.Labels(c.labels)).Add(float64(n)) }

type promUpDownCounter struct {
	vec    *prometheus.GaugeVec
	labels map[string]string
}

func (u *promUpDownCounter) Add(n int64) { u.vec.With(prometheus.Labels(u.labels)).Add(float64(n)) }

type promHistogram struct {
	vec    *prometheus.HistogramVec
	labels map[string]string
}

func (h *promHistogram) Record(v float64) { h.vec.With(prometheus.Labels(h.labels)).Observe(v) }
