package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы платежной сессии
const (
	PaymentOpened    = "opened"
	PaymentVerified  = "verified"
	PaymentFailed    = "failed"
	PaymentAbandoned = "abandoned"
)

// Metrics набор метрик сервиса
// Все методы записи безопасны для nil-получателя (метрики выключены)
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBQueryErrors      *prometheus.CounterVec
	DBOpenConnections  prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections  prometheus.Gauge

	PaymentSessions        *prometheus.CounterVec
	BookingsCreated        prometheus.Counter
	InvoicesAppended       prometheus.Counter
	NotificationsFailed    prometheus.Counter
	ReconciliationsStarted prometheus.Counter
}

// New регистрирует метрики в стандартном реестре Prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, serviceName)
}

// NewWithRegisterer регистрирует метрики в указанном реестре (используется в тестах)
func NewWithRegisterer(reg prometheus.Registerer, serviceName string) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: labels,
		}, []string{"operation"}),
		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: labels,
		}),
		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: labels,
		}),
		DBIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: labels,
		}),

		PaymentSessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "payment_sessions_total",
			Help:        "Payment sessions by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings persisted after verified payment",
			ConstLabels: labels,
		}),
		InvoicesAppended: factory.NewCounter(prometheus.CounterOpts{
			Name:        "invoices_appended_total",
			Help:        "Balance invoices appended to existing bookings",
			ConstLabels: labels,
		}),
		NotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name:        "notifications_failed_total",
			Help:        "Notifications that could not be delivered",
			ConstLabels: labels,
		}),
		ReconciliationsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name:        "reconciliations_started_total",
			Help:        "Verified payments whose booking had to be reconciled",
			ConstLabels: labels,
		}),
	}
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// ObserveQuery фиксирует запрос к БД
func (m *Metrics) ObserveQuery(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordPaymentOutcome фиксирует исход платежной сессии
func (m *Metrics) RecordPaymentOutcome(outcome string) {
	if m == nil {
		return
	}
	m.PaymentSessions.WithLabelValues(outcome).Inc()
}

// RecordBookingCreated фиксирует созданное бронирование
func (m *Metrics) RecordBookingCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

// RecordInvoiceAppended фиксирует добавленный счет
func (m *Metrics) RecordInvoiceAppended() {
	if m == nil {
		return
	}
	m.InvoicesAppended.Inc()
}

// RecordNotificationFailed фиксирует недоставленное уведомление
func (m *Metrics) RecordNotificationFailed() {
	if m == nil {
		return
	}
	m.NotificationsFailed.Inc()
}

// RecordReconciliationStarted фиксирует запуск сверки платежа
func (m *Metrics) RecordReconciliationStarted() {
	if m == nil {
		return
	}
	m.ReconciliationsStarted.Inc()
}
