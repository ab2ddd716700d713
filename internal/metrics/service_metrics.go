package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций с хранилищем.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// MethodOther заменяет в метках нестандартные HTTP-методы.
const MethodOther = "other"

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// methodLabel ограничивает кардинальность метки method.
func methodLabel(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return MethodOther
}

// ServiceMetrics содержит метрики HTTP-слоя, хранилища и публикации событий.
// Все методы безопасны для nil-получателя.
type ServiceMetrics struct {
	// HTTP
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	// Хранилище
	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec

	// События
	eventsPublished *prometheus.CounterVec
	eventsFailed    *prometheus.CounterVec
}

// NewServiceMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewServiceMetrics() *ServiceMetrics {
	return NewServiceMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewServiceMetricsWithRegisterer позволяет изолировать метрики (например, в тестах).
func NewServiceMetricsWithRegisterer(registerer prometheus.Registerer) *ServiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ServiceMetrics{
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurants_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		httpDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "restaurants_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		httpInFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "restaurants_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
		storeOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurants_store_operations_total",
			Help: "Total number of document store operations by outcome",
		}, []string{"operation", "outcome"}),
		storeDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "restaurants_store_operation_duration_seconds",
			Help:    "Duration of document store round trips (connect, operation, disconnect) in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation"}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurants_events_published_total",
			Help: "Total number of restaurant events published",
		}, []string{"event_type"}),
		eventsFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "restaurants_events_failed_total",
			Help: "Total number of restaurant events that failed to publish",
		}, []string{"event_type"}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
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
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// ObserveHTTPRequest учитывает завершённый HTTP-запрос.
func (m *ServiceMetrics) ObserveHTTPRequest(route, method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	method = methodLabel(method)
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// HTTPRequestStarted увеличивает количество обслуживаемых запросов.
func (m *ServiceMetrics) HTTPRequestStarted() {
	if m == nil {
		return
	}
	m.httpInFlight.Inc()
}

// HTTPRequestFinished уменьшает количество обслуживаемых запросов.
func (m *ServiceMetrics) HTTPRequestFinished() {
	if m == nil {
		return
	}
	m.httpInFlight.Dec()
}

// ObserveStoreOperation записывает исход и длительность обращения к хранилищу.
func (m *ServiceMetrics) ObserveStoreOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.storeOperations.WithLabelValues(operation, outcome).Inc()
	m.storeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEventPublished увеличивает счётчик опубликованных событий.
func (m *ServiceMetrics) RecordEventPublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventFailed увеличивает счётчик неудачных публикаций.
func (m *ServiceMetrics) RecordEventFailed(eventType string) {
	if m == nil {
		return
	}
	m.eventsFailed.WithLabelValues(eventType).Inc()
}
