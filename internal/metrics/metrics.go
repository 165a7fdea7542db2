package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors exported by the service.
type Metrics struct {
	ReqTotal          *prometheus.CounterVec
	ReqDur            *prometheus.HistogramVec
	InvoicesCreated   *prometheus.CounterVec
	InvoiceGrandTotal prometheus.Histogram
	AssistantRequests *prometheus.CounterVec
}

// New registers and returns the collectors on reg (the default registerer when nil).
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		InvoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Invoices persisted, by numbering color.",
		}, []string{"color"}),
		InvoiceGrandTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_grand_total",
			Help:      "Grand total of persisted invoices in rupees.",
			Buckets:   []float64{1000, 5000, 10000, 25000, 50000, 100000, 250000, 500000, 1000000},
		}),
		AssistantRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Assistant messages handled, by resolved intent.",
		}, []string{"intent"}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur, m.InvoicesCreated, m.InvoiceGrandTotal, m.AssistantRequests)
	return m
}

// Middleware observes request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ReqTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.ReqDur.WithLabelValues(c.Request.Method, route).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	}
}

// InvoiceCreated records a persisted invoice.
func (m *Metrics) InvoiceCreated(color string, grandTotal float64) {
	if m == nil {
		return
	}
	m.InvoicesCreated.WithLabelValues(color).Inc()
	m.InvoiceGrandTotal.Observe(grandTotal)
}

// AssistantHandled records the intent an assistant message resolved to.
func (m *Metrics) AssistantHandled(intent string) {
	if m == nil {
		return
	}
	m.AssistantRequests.WithLabelValues(intent).Inc()
}
