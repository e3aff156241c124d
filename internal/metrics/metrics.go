package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tuneup"

// Metrics exports HTTP, persistence, share-link and radar counters.
type Metrics struct {
	gatherer     prometheus.Gatherer
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	stateWrites  *prometheus.CounterVec
	shareDecodes *prometheus.CounterVec
	radarRenders *prometheus.CounterVec
}

// New registers every collector on reg. A collector that is already
// registered is reused, so repeated construction against one registry is safe.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{gatherer: reg}
	var err error
	if m.httpRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})); err != nil {
		return nil, err
	}
	if m.httpDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})); err != nil {
		return nil, err
	}
	if m.stateWrites, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_writes_total",
		Help:      "Persisted assessment writes and clears by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if m.shareDecodes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "share_decodes_total",
		Help:      "Share link decodes by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if m.radarRenders, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "radar_renders_total",
		Help:      "Radar SVG renders, split by cache hit.",
	}, []string{"cache"})); err != nil {
		return nil, err
	}
	return m, nil
}

// MustNew is New for process start-up.
func MustNew(reg *prometheus.Registry) *Metrics {
	m, err := New(reg)
	if err != nil {
		panic(err)
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) StateWrite(result string) {
	if m == nil {
		return
	}
	m.stateWrites.WithLabelValues(result).Inc()
}

func (m *Metrics) ShareDecode(result string) {
	if m == nil {
		return
	}
	m.shareDecodes.WithLabelValues(result).Inc()
}

func (m *Metrics) RadarRender(cached bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cached {
		label = "hit"
	}
	m.radarRenders.WithLabelValues(label).Inc()
}
