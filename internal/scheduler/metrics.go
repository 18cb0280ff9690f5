package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	activeWorkersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "servecore",
		Subsystem: "scheduler",
		Name:      "active_workers",
		Help:      "Tasks currently executing",
	})

	maxWorkersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "servecore",
		Subsystem: "scheduler",
		Name:      "max_workers",
		Help:      "Global concurrency cap",
	})

	queueLengthGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "servecore",
		Subsystem: "scheduler",
		Name:      "queue_length",
		Help:      "Tasks waiting for a slot",
	})

	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "servecore",
			Subsystem: "scheduler",
			Name:      "tasks_total",
			Help:      "Settled tasks by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "servecore",
			Subsystem: "scheduler",
			Name:      "task_duration_seconds",
			Help:      "Execution time of tasks from start to settlement",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(activeWorkersGauge, maxWorkersGauge, queueLengthGauge, tasksTotal, taskDuration)
}
