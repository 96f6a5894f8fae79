package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	liveMeshes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blockworld",
		Subsystem: "render",
		Name:      "meshes",
		Help:      "Построенные ресурсы чанков",
	})
	meshOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockworld",
		Subsystem: "render",
		Name:      "ops_total",
		Help:      "Операции над ресурсами чанков",
	}, []string{"op"})
)
