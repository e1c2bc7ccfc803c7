package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IntakeMetrics содержит метрики приёма заказов и каталога.
type IntakeMetrics struct {
	// Счётчики исходов приёма заказа
	ordersCreated    prometheus.Counter
	validationFailed prometheus.Counter
	storageFailed    prometheus.Counter

	// Счётчик запусков синхронизации каталога
	catalogSyncs prometheus.Counter

	// Гистограмма длительности HTTP-запросов
	requestDuration *prometheus.HistogramVec
}

// NewIntakeMetrics регистрирует метрики в реестре по умолчанию.
func NewIntakeMetrics() *IntakeMetrics {
	return NewIntakeMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewIntakeMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация того же коллектора не считается ошибкой.
func NewIntakeMetricsWithRegisterer(registerer prometheus.Registerer) *IntakeMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &IntakeMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "partstore_orders_created_total",
			Help: "Total number of orders committed to storage",
		}),
		validationFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "partstore_orders_validation_failed_total",
			Help: "Total number of order submissions rejected by validation",
		}),
		storageFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "partstore_orders_storage_failed_total",
			Help: "Total number of order submissions failed and rolled back in storage",
		}),
		catalogSyncs: registerCounter(registerer, prometheus.CounterOpts{
			Name: "partstore_catalog_syncs_total",
			Help: "Total number of supplier catalog synchronizations",
		}),
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "partstore_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"handler", "method", "code"}),
	}
}

// OrderCreated фиксирует успешно сохранённый заказ.
func (m *IntakeMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// ValidationFailed фиксирует отклонённый валидацией запрос.
func (m *IntakeMetrics) ValidationFailed() {
	if m == nil {
		return
	}
	m.validationFailed.Inc()
}

// StorageFailed фиксирует откат транзакции сохранения.
func (m *IntakeMetrics) StorageFailed() {
	if m == nil {
		return
	}
	m.storageFailed.Inc()
}

// CatalogSynced фиксирует запуск синхронизации каталога.
func (m *IntakeMetrics) CatalogSynced() {
	if m == nil {
		return
	}
	m.catalogSyncs.Inc()
}

// ObserveRequest записывает длительность HTTP-запроса.
func (m *IntakeMetrics) ObserveRequest(handler, method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.
		WithLabelValues(handler, method, fmt.Sprintf("%d", code)).
		Observe(duration.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
