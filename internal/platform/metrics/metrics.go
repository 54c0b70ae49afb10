package metrics

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vetclinic"

// Collector agrupa las métricas del API (HTTP + storage).
// Implementa prometheus.Collector.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	storeOps     *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec
}

func NewCollector() *Collector {
	return &Collector{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route pattern and status code.",
			}, []string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route pattern.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "route"},
		),
		storeOps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of storage operations.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"operation"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Failed storage operations by operation and error kind.",
			}, []string{"operation", "kind"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.httpRequests.Describe(ch)
	c.httpDuration.Describe(ch)
	c.storeOps.Describe(ch)
	c.storeErrors.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.httpRequests.Collect(ch)
	c.httpDuration.Collect(ch)
	c.storeOps.Collect(ch)
	c.storeErrors.Collect(ch)
}

// ObserveHTTP registra un request terminado. Acepta receptor nil.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveStore registra una operación de storage; kind vacío = éxito.
func (c *Collector) ObserveStore(operation string, elapsed time.Duration, kind string) {
	if c == nil {
		return
	}
	c.storeOps.WithLabelValues(operation).Observe(elapsed.Seconds())
	if kind != "" {
		c.storeErrors.WithLabelValues(operation, kind).Inc()
	}
}

// NewRegistry arma un registry con los collectors de Go, del proceso y el de la app.
func NewRegistry(c *Collector) (*prometheus.Registry, error) {
	r := prometheus.NewRegistry()
	if err := r.Register(prometheus.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := r.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{
		PidFn: func() (int, error) { return os.Getpid(), nil },
	})); err != nil {
		return nil, err
	}
	if c != nil {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Handler expone el registry en formato prometheus.
func Handler(r *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(r, promhttp.HandlerOpts{})
}
