package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the service's Prometheus collectors.
type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterRecordsSet         *prometheus.CounterVec
	CounterSummariesGenerated *prometheus.CounterVec
	CounterGoalTransitions    *prometheus.CounterVec
	CounterReadiness          prometheus.Counter
	CounterImportedWorkouts   prometheus.Counter
	CounterHandleRequestPanic prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
	HistReadinessScore  prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("liftlog", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftlog", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterRecordsSet := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "personal_records_set",
		Help:      "The total number of personal records set or improved",
	}, []string{"record_type"})
	counterSummaries := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "summaries_generated",
		Help:      "The total number of training summaries generated",
	}, []string{"period_type"})
	counterGoalTransitions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "goal_transitions",
		Help:      "The total number of goal status changes",
	}, []string{"status"})
	counterReadiness := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "readiness_computed",
		Help:      "The total number of readiness scores computed",
	})
	counterImported := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "imported_workouts",
		Help:      "The total number of workouts stored by imports",
	})

	counterPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of recovered handler panics",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		Name:      "request_duration_seconds",
		Help:      "Total duration of requests in seconds",
	})
	histReadiness := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		Name:      "readiness_score",
		Help:      "Distribution of computed readiness scores",
	})

	return &Manager{
		CounterRequests:           counterRequests,
		CounterRecordsSet:         counterRecordsSet,
		CounterSummariesGenerated: counterSummaries,
		CounterGoalTransitions:    counterGoalTransitions,
		CounterReadiness:          counterReadiness,
		CounterImportedWorkouts:   counterImported,
		CounterHandleRequestPanic: counterPanic,
		GaugeRequests:             gaugeRequests,
		HistRequestDuration:       histReqDuration,
		HistReadinessScore:        histReadiness,
	}
}
