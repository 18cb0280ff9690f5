package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servecore",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache operations by namespace, operation and serving tier",
		},
		[]string{"namespace", "op", "tier"},
	)

	backendFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servecore",
			Subsystem: "cache",
			Name:      "backend_failures_total",
			Help:      "Primary backend errors answered by the fallback tier",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, backendFailures)
}
