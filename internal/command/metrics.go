package command

import "github.com/prometheus/client_golang/prometheus"

// Metrics счётчик выполненных команд. Нулевой указатель допустим.
type Metrics struct {
	executed *prometheus.CounterVec
}

// NewMetrics регистрирует commands_executed_total в reg (nil: глобальный регистр)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "commands_executed_total",
			Help: "Выполненные команды по имени и результату.",
		}, []string{"command", "result"}),
	}
	reg.MustRegister(m.executed)
	return m
}

func (m *Metrics) inc(command, result string) {
	if m == nil {
		return
	}
	m.executed.WithLabelValues(command, result).Inc()
}
