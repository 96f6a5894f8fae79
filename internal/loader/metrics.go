package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	targetColumns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockworld",
		Subsystem: "loader",
		Name:      "target_columns",
		Help:      "Колонны в радиусе интереса наблюдателей",
	})
	backlogColumns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockworld",
		Subsystem: "loader",
		Name:      "backlog_columns",
		Help:      "Колонны, ожидающие загрузки",
	})
	activeViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockworld",
		Subsystem: "loader",
		Name:      "viewers",
		Help:      "Активные наблюдатели",
	})
	instructions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "loader",
		Name:      "instructions_total",
		Help:      "Выданные инструкции загрузки и выгрузки",
	}, []string{"kind"})
)
