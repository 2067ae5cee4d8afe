package decoder

import "github.com/prometheus/client_golang/prometheus"

var (
	poolInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "decoderd",
		Subsystem: "pool",
		Name:      "in_use",
		Help:      "Workers currently checked out",
	})

	poolWaiters = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "decoderd",
		Subsystem: "pool",
		Name:      "waiters",
		Help:      "Dispatchers blocked waiting for a worker",
	})

	poolAcquireWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "decoderd",
		Subsystem: "pool",
		Name:      "acquire_wait_seconds",
		Help:      "Time spent waiting for a worker",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	translationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decoderd",
			Name:      "translations_total",
			Help:      "Translated sentences by outcome",
		},
		[]string{"outcome"},
	)

	streamBuffered = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "decoderd",
		Subsystem: "stream",
		Name:      "buffered",
		Help:      "Finished records waiting in reorder buffers",
	})

	leakedStates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "decoderd",
		Subsystem: "scoring",
		Name:      "leaked_states_total",
		Help:      "Scoring states still live when their sentence finished",
	})
)

// Outcome labels for translationsTotal.
const (
	outcomeOK     = "ok"
	outcomeAbsent = "absent"
	outcomeFailed = "failed"
)

func init() {
	prometheus.MustRegister(poolInUse, poolWaiters, poolAcquireWait, translationsTotal, streamBuffered, leakedStates)
}
