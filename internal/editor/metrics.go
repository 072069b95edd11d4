package editor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics Prometheus-метрики операций редактора.
// Нулевой указатель допустим: метрики просто не собираются.
type Metrics struct {
	operations *prometheus.CounterVec
	cells      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editor",
			Name:      "operations_total",
			Help:      "Количество операций редактора по типу и результату.",
		}, []string{"op", "result"}),
		cells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "editor",
			Name:      "cells_changed_total",
			Help:      "Количество изменённых клеток.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "editor",
			Name:      "operation_duration_seconds",
			Help:      "Длительность операций редактора.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"op"}),
	}
	reg.MustRegister(m.operations, m.cells, m.duration)
	return m
}

func (m *Metrics) observe(op string, start time.Time, changed int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
	if changed > 0 {
		m.cells.WithLabelValues(op).Add(float64(changed))
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
