package world

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	residentColumns = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockworld",
		Subsystem: "store",
		Name:      "resident_columns",
		Help:      "Количество колонн в памяти",
	})
	generatedColumns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "store",
		Name:      "generated_columns_total",
		Help:      "Сколько колонн сгенерировано",
	})
	generationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "store",
		Name:      "generation_errors_total",
		Help:      "Ошибки генерации колонн",
	})
	generationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blockworld",
		Subsystem: "store",
		Name:      "generation_seconds",
		Help:      "Длительность генерации одной колонны",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	})
	blockOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "store",
		Name:      "block_ops_total",
		Help:      "Операции чтения и записи блоков",
	}, []string{"op"})
)
