package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector the runtime exposes: Scheduler
// wave/conflict counts, Driver recursion depth, governor trigger counts,
// and tool latency (spec SPEC_FULL.md Domain Stack).
type Metrics struct {
	SchedulerWaves      *prometheus.CounterVec
	SchedulerConflicts  *prometheus.CounterVec
	DriverDepth         prometheus.Histogram
	DriverIterations    prometheus.Counter
	ToolLatency         *prometheus.HistogramVec
	ToolRepetitionWarns prometheus.Counter
	TextRepetitionTrips prometheus.Counter
	CompletionSignals   *prometheus.CounterVec
}

// NewMetrics registers every collector against reg and returns the bundle.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SchedulerWaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentrt_scheduler_waves_total",
			Help: "Number of tool-call waves dispatched by the scheduler.",
		}, []string{"action_key"}),
		SchedulerConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentrt_scheduler_conflicts_total",
			Help: "Number of tool calls deferred to a later wave due to a resource conflict.",
		}, []string{"action_key"}),
		DriverDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentrt_driver_recursion_depth",
			Help:    "Recursion depth reached at the end of a Driver.Run call.",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		DriverIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agentrt_driver_iterations_total",
			Help: "Total stream-then-execute iterations performed across all Driver.Run calls.",
		}),
		ToolLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agentrt_tool_latency_seconds",
			Help:    "Tool handler execution latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool_name"}),
		ToolRepetitionWarns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agentrt_tool_repetition_warnings_total",
			Help: "Loop warnings injected by the tool-repetition detector.",
		}),
		TextRepetitionTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agentrt_text_repetition_aborts_total",
			Help: "In-flight stream aborts triggered by the text-repetition detector.",
		}),
		CompletionSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentrt_completion_signals_total",
			Help: "Completion-signal tool invocations, by tool name.",
		}, []string{"tool_name"}),
	}

	reg.MustRegister(
		m.SchedulerWaves, m.SchedulerConflicts, m.DriverDepth, m.DriverIterations,
		m.ToolLatency, m.ToolRepetitionWarns, m.TextRepetitionTrips, m.CompletionSignals,
	)
	return m
}
