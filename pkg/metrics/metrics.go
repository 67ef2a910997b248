// Package metrics exposes Prometheus counters for decoding and serving.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document load modes.
const (
	ModeBasic     = "basic"
	ModeReconcile = "reconcile"
)

// Metrics holds the counters on a dedicated registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	linesClassified *prometheus.CounterVec
	documentsLoaded *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		linesClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loglens",
			Name:      "lines_classified_total",
			Help:      "Lines classified, by the strategy that decoded them.",
		}, []string{"strategy"}),
		documentsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loglens",
			Name:      "documents_loaded_total",
			Help:      "Documents loaded, by mode.",
		}, []string{"mode"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loglens",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by path and status code.",
		}, []string{"path", "code"}),
	}
	m.registry.MustRegister(m.linesClassified, m.documentsLoaded, m.httpRequests)
	return m
}

// Registry returns the registry the counters are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStrategy counts one classified line. It matches classify.Observer.
func (m *Metrics) ObserveStrategy(strategy string) {
	if m == nil {
		return
	}
	m.linesClassified.WithLabelValues(strategy).Inc()
}

// DocumentLoaded counts one loaded document.
func (m *Metrics) DocumentLoaded(mode string) {
	if m == nil {
		return
	}
	m.documentsLoaded.WithLabelValues(mode).Inc()
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(path string, code int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
