// Package metrics prometheus метрики сервиса.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "telesklad"

// Metrics набор счетчиков. Методы безопасно вызывать на nil.
type Metrics struct {
	jobsProcessed *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	batchDuration prometheus.Histogram
	gatherer      prometheus.Gatherer
}

// New регистрирует метрики в reg. Если reg nil, используется новый изолированный реестр.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		jobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Notification jobs handled by the job runner, by type and result.",
		}, []string{"type", "result"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Committed status transitions, by entity and target status.",
		}, []string{"entity", "to"}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_batch_duration_seconds",
			Help:      "Duration of one job runner batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
}

func (m *Metrics) TransitionApplied(entity, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, to).Inc()
}

func (m *Metrics) JobProcessed(jobType, result string) {
	if m == nil {
		return
	}
	m.jobsProcessed.WithLabelValues(jobType, result).Inc()
}

func (m *Metrics) ObserveBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}

// Handler http обработчик для /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
