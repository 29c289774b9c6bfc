package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor records bakery activity as Prometheus metrics on a private
// registry and keeps a small snapshot for the admin dashboard.
type Monitor struct {
	registry *prometheus.Registry

	restocks       *prometheus.CounterVec
	scalings       *prometheus.CounterVec
	statusChanges  *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	stockValue     *prometheus.GaugeVec
	requestLatency *prometheus.HistogramVec

	metrics      map[string]float64
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a monitor with all collectors registered
func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		restocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakehouse_restocks_total",
				Help: "Restocks recorded per ingredient",
			},
			[]string{"ingredient"},
		),
		scalings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakehouse_recipe_scalings_total",
				Help: "Recipe scaling calculations per recipe",
			},
			[]string{"recipe"},
		),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakehouse_order_status_changes_total",
				Help: "Order status changes by target status",
			},
			[]string{"status"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bakehouse_notifications_total",
				Help: "Inventory notifications raised by type",
			},
			[]string{"type"},
		),
		stockValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bakehouse_stock_value_dollars",
				Help: "Value of stock on hand per ingredient",
			},
			[]string{"ingredient"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bakehouse_http_request_duration_seconds",
				Help:    "API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "code"},
		),
		metrics:   make(map[string]float64),
		startTime: time.Now(),
	}

	m.registry.MustRegister(
		m.restocks,
		m.scalings,
		m.statusChanges,
		m.notifications,
		m.stockValue,
		m.requestLatency,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRestock counts a restock and updates the ingredient's stock value
func (m *Monitor) RecordRestock(ingredient string, stockValue float64) {
	m.restocks.WithLabelValues(ingredient).Inc()
	m.stockValue.WithLabelValues(ingredient).Set(stockValue)
	m.add("restocks", 1)
}

// SetStockValue updates the stock value gauge without counting a restock
func (m *Monitor) SetStockValue(ingredient string, stockValue float64) {
	m.stockValue.WithLabelValues(ingredient).Set(stockValue)
}

// RecordScaling counts a recipe scaling
func (m *Monitor) RecordScaling(recipe string) {
	m.scalings.WithLabelValues(recipe).Inc()
	m.add("scalings", 1)
}

// RecordStatusChange counts an order moving to status
func (m *Monitor) RecordStatusChange(status string) {
	m.statusChanges.WithLabelValues(status).Inc()
	m.add("status_changes", 1)
}

// RecordNotification counts an inventory notification
func (m *Monitor) RecordNotification(kind string) {
	m.notifications.WithLabelValues(kind).Inc()
	m.add("notifications", 1)
}

// ObserveRequest records an API request's latency
func (m *Monitor) ObserveRequest(method, route, code string, d time.Duration) {
	m.requestLatency.WithLabelValues(method, route, code).Observe(d.Seconds())
}

func (m *Monitor) add(name string, delta float64) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] += delta
}

// Snapshot returns the dashboard counters since start, plus uptime
func (m *Monitor) Snapshot() map[string]float64 {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	out := make(map[string]float64, len(m.metrics)+1)
	for k, v := range m.metrics {
		out[k] = v
	}
	out["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return out
}

// Reset clears the dashboard counters. Prometheus series are kept.
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]float64)
}
