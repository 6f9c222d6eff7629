package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector methods are nil-safe so callers may run without metrics.
type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	AppointmentsTotal      *prometheus.CounterVec
	GuestBookingsTotal     *prometheus.CounterVec
	ConsultationsOpened    prometheus.Counter
	ConsultationsCompleted prometheus.Counter
	VitalsAppended         *prometheus.CounterVec
	HealthBandTotal        *prometheus.CounterVec

	DBQueryDuration *prometheus.HistogramVec

	AuditBufferDropped prometheus.Counter
}

// NewCollector registers every metric on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh prometheus.NewRegistry() in tests.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		AppointmentsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "appointments_total",
			Help:      "Appointment writes by resulting status.",
		}, []string{"status"}),

		GuestBookingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "guest_bookings_total",
			Help:      "Guest bookings by outcome (staged, materialized, dropped).",
		}, []string{"outcome"}),

		ConsultationsOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "consultations_opened_total",
			Help:      "Consultations created on first open.",
		}),

		ConsultationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "consultations_completed_total",
			Help:      "Consultations finalized.",
		}),

		VitalsAppended: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "vitals_history_appended_total",
			Help:      "Vitals history records appended by source.",
		}, []string{"source"}),

		HealthBandTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "health_band_total",
			Help:      "Health assessments rendered by band.",
		}, []string{"band"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency distribution.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation", "table"}),

		AuditBufferDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func (c *Collector) AppointmentWritten(status string) {
	if c == nil {
		return
	}
	c.AppointmentsTotal.WithLabelValues(status).Inc()
}

func (c *Collector) GuestBooking(outcome string) {
	if c == nil {
		return
	}
	c.GuestBookingsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) ConsultationOpened() {
	if c == nil {
		return
	}
	c.ConsultationsOpened.Inc()
}

func (c *Collector) ConsultationCompleted() {
	if c == nil {
		return
	}
	c.ConsultationsCompleted.Inc()
}

func (c *Collector) VitalsRecorded(source string) {
	if c == nil {
		return
	}
	c.VitalsAppended.WithLabelValues(source).Inc()
}

func (c *Collector) HealthBand(band string) {
	if c == nil {
		return
	}
	if band == "" {
		band = "no_data"
	}
	c.HealthBandTotal.WithLabelValues(band).Inc()
}

func (c *Collector) AuditDropped() {
	if c == nil {
		return
	}
	c.AuditBufferDropped.Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
