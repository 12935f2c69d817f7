package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the HTTP layer, the borrowing
// lifecycle and the inventory ledger. All methods are nil-safe.
type Metrics struct {
	registry prometheus.Gatherer

	HTTPDuration *prometheus.HistogramVec

	// Borrowing operations by operation (create, update, delete) and result
	BorrowingOps *prometheus.CounterVec

	// Stock units moved by direction (reserve, release)
	StockUnits *prometheus.CounterVec

	// Adjustments refused because stock would go negative
	InsufficientStock prometheus.Counter
}

// New registers all collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),

		BorrowingOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "library_borrowing_operations_total",
			Help: "Borrowing lifecycle operations by operation and result",
		}, []string{"operation", "result"}),

		StockUnits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "library_stock_units_total",
			Help: "Book units reserved or released by the inventory ledger",
		}, []string{"direction"}),

		InsufficientStock: factory.NewCounter(prometheus.CounterOpts{
			Name: "library_insufficient_stock_total",
			Help: "Stock adjustments refused because stock would become negative",
		}),
	}
}

func (m *Metrics) ObserveHTTP(route, method, status string, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(route, method, status).Observe(d.Seconds())
	}
}

func (m *Metrics) IncBorrowingOp(operation, result string) {
	if m != nil {
		m.BorrowingOps.WithLabelValues(operation, result).Inc()
	}
}

// AddStockDelta records a committed delta; negative reserves, positive releases.
func (m *Metrics) AddStockDelta(delta int) {
	if m == nil || delta == 0 {
		return
	}
	if delta < 0 {
		m.StockUnits.WithLabelValues("reserve").Add(float64(-delta))
		return
	}
	m.StockUnits.WithLabelValues("release").Add(float64(delta))
}

func (m *Metrics) IncInsufficientStock() {
	if m != nil {
		m.InsufficientStock.Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
