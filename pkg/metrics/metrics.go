package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "soonscan"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	RPC    = "rpc"
	Poller = "poller"
)

// Error type constants.
const (
	ErrTypeRPC          = "rpc"
	ErrTypeBlockSkipped = "block_skipped"
	ErrTypePoll         = "poll"
	ErrTypeLookup       = "lookup"
)

// Labels holds constant labels applied to all metrics.
type Labels struct {
	Environment string // Deployment environment (e.g., "production", "staging")
	Region      string // Cloud region (e.g., "us-east-1")
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	if l.Region != "" {
		labels["region"] = l.Region
	}
	return labels
}

type Metrics struct {
	errors *prometheus.CounterVec

	// RPC metrics
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	rpcInFlight prometheus.Gauge
	rpcRetries  *prometheus.CounterVec

	// Batch fetch counters
	blocksFetched prometheus.Counter
	blocksSkipped prometheus.Counter

	// Surface polling
	pollCycles   *prometheus.CounterVec
	pollDuration *prometheus.HistogramVec
	surfaceState *prometheus.GaugeVec

	networkSwitches *prometheus.CounterVec
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	m := &Metrics{
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total errors by type",
		}, []string{"type"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RPC,
			Name:      "calls_total",
			Help:      "Total RPC calls by method and status",
		}, []string{"method", "status"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: RPC,
			Name:      "duration_seconds",
			Help:      "RPC call duration in seconds, retries included",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),
		rpcInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: RPC,
			Name:      "in_flight",
			Help:      "Number of RPC calls currently in progress",
		}),
		rpcRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: RPC,
			Name:      "retries_total",
			Help:      "Total RPC attempts that were retried, by method",
		}, []string{"method"}),
		blocksFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blocks_fetched_total",
			Help:      "Total blocks fetched and normalized in latest-N batches",
		}),
		blocksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "blocks_skipped_total",
			Help:      "Total blocks skipped in latest-N batches because their fetch failed",
		}),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Poller,
			Name:      "cycles_total",
			Help:      "Total poll cycles by surface and status",
		}, []string{"surface", "status"}),
		pollDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Poller,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a poll cycle by surface",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"surface"}),
		surfaceState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Poller,
			Name:      "state",
			Help:      "Current surface state (0 idle, 1 loading, 2 ready, 3 failed)",
		}, []string{"surface"}),
		networkSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "network_switches_total",
			Help:      "Total active network switches by target network",
		}, []string{"network"}),
	}

	err := errors.Join(
		reg.Register(m.errors),
		reg.Register(m.rpcCalls),
		reg.Register(m.rpcDuration),
		reg.Register(m.rpcInFlight),
		reg.Register(m.rpcRetries),
		reg.Register(m.blocksFetched),
		reg.Register(m.blocksSkipped),
		reg.Register(m.pollCycles),
		reg.Register(m.pollDuration),
		reg.Register(m.surfaceState),
		reg.Register(m.networkSwitches),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// IncError increments the error counter for the given error type.
func (m *Metrics) IncError(errType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(errType).Inc()
}

// IncRPCInFlight increments the in-flight RPC gauge.
func (m *Metrics) IncRPCInFlight() {
	if m == nil {
		return
	}
	m.rpcInFlight.Inc()
}

// DecRPCInFlight decrements the in-flight RPC gauge.
func (m *Metrics) DecRPCInFlight() {
	if m == nil {
		return
	}
	m.rpcInFlight.Dec()
}

// RecordRPCCall records an RPC call outcome.
func (m *Metrics) RecordRPCCall(method string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.errors.WithLabelValues(ErrTypeRPC).Inc()
	}
	m.rpcCalls.WithLabelValues(method, status).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

// IncRPCRetry records that an attempt of method failed and will be retried.
func (m *Metrics) IncRPCRetry(method string) {
	if m == nil {
		return
	}
	m.rpcRetries.WithLabelValues(method).Inc()
}

// RecordBatch records the outcome of a latest-N block batch.
func (m *Metrics) RecordBatch(fetched, skipped int) {
	if m == nil {
		return
	}
	m.blocksFetched.Add(float64(fetched))
	m.blocksSkipped.Add(float64(skipped))
	if skipped > 0 {
		m.errors.WithLabelValues(ErrTypeBlockSkipped).Add(float64(skipped))
	}
}

// RecordPoll records the outcome of one poll cycle of a surface.
func (m *Metrics) RecordPoll(surface string, err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.errors.WithLabelValues(ErrTypePoll).Inc()
	}
	m.pollCycles.WithLabelValues(surface, status).Inc()
	m.pollDuration.WithLabelValues(surface).Observe(durationSeconds)
}

// SetSurfaceState publishes the numeric state of a surface.
func (m *Metrics) SetSurfaceState(surface string, state int) {
	if m == nil {
		return
	}
	m.surfaceState.WithLabelValues(surface).Set(float64(state))
}

// IncNetworkSwitch records a switch of the active network.
func (m *Metrics) IncNetworkSwitch(networkID string) {
	if m == nil {
		return
	}
	m.networkSwitches.WithLabelValues(networkID).Inc()
}
