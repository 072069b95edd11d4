package command

import "github.com/prometheus/client_golang/prometheus"

// ExecutedCounter доступ к счётчику для внешних тестов пакета
func ExecutedCounter(m *Metrics, cmd, result string) prometheus.Counter {
	return m.executed.WithLabelValues(cmd, result)
}
