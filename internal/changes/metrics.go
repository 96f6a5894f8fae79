package changes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pendingRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockworld",
		Subsystem: "changes",
		Name:      "pending",
		Help:      "Записей в очереди изменений",
	})
	deliveredRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "changes",
		Name:      "delivered_total",
		Help:      "Доставленные потребителю записи",
	}, []string{"kind"})
	discardedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "changes",
		Name:      "discarded_total",
		Help:      "Отброшенные записи",
	}, []string{"reason"})
	requeuedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "changes",
		Name:      "requeued_total",
		Help:      "Записи, возвращённые в очередь после ErrNotReady",
	})
)
