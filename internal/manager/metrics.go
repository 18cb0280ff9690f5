package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	residentGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "servecore",
		Subsystem: "models",
		Name:      "resident",
		Help:      "Models currently resident in memory",
	})

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servecore",
			Subsystem: "models",
			Name:      "loads_total",
			Help:      "Model loads by result (ok, standin, error)",
		},
		[]string{"result"},
	)

	modelEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servecore",
			Subsystem: "models",
			Name:      "evictions_total",
			Help:      "Model unloads by reason (admission, idle, manual)",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(residentGauge, modelLoadsTotal, modelEvictionsTotal)
}
