package worldedit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics метрики правок мира. Нулевой указатель допустим.
type Metrics struct {
	edits    *prometheus.CounterVec
	changed  *prometheus.CounterVec
	chunks   prometheus.Counter
	duration *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg (nil: глобальный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldedit",
			Name:      "edits_total",
			Help:      "Правки мира по операции и результату.",
		}, []string{"op", "result"}),
		changed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "worldedit",
			Name:      "blocks_changed_total",
			Help:      "Изменённые блоки по операции.",
		}, []string{"op"}),
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "worldedit",
			Name:      "chunks_touched_total",
			Help:      "Чанки, в которые писали правки.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "worldedit",
			Name:      "edit_duration_seconds",
			Help:      "Длительность правки, включая ожидание блокировки мира.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.edits, m.changed, m.chunks, m.duration)
	return m
}

func (m *Metrics) observe(op string, changed, touched int, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.edits.WithLabelValues(op, result).Inc()
	if changed > 0 {
		m.changed.WithLabelValues(op).Add(float64(changed))
	}
	if touched > 0 {
		m.chunks.Add(float64(touched))
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
