package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arklim/passmeter/internal/core/domain"
)

// StrengthMetricsOptions controls construction of the evaluation collectors.
type StrengthMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// StrengthMetrics records evaluation outcomes, cache efficiency and policy rejections.
type StrengthMetrics struct {
	evaluations  *prometheus.CounterVec
	scores       prometheus.Histogram
	cacheLookups *prometheus.CounterVec
	rejections   *prometheus.CounterVec
}

// NewStrengthMetrics constructs the collectors and registers them, reusing already registered ones.
func NewStrengthMetrics(opts StrengthMetricsOptions) (*StrengthMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "passmeter"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	evaluations, err := RegisterCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "strength",
		Name:      "evaluations_total",
		Help:      "Total number of password evaluations partitioned by strength level and source.",
	}, []string{"level", "source"}))
	if err != nil {
		return nil, err
	}

	scores, err := RegisterCollector(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "strength",
		Name:      "score",
		Help:      "Distribution of total strength scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}))
	if err != nil {
		return nil, err
	}

	cacheLookups, err := RegisterCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "strength",
		Name:      "cache_lookups_total",
		Help:      "Evaluation cache lookups partitioned by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	rejections, err := RegisterCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "policy",
		Name:      "rejections_total",
		Help:      "Passwords rejected by the validation policy partitioned by violation code.",
	}, []string{"code"}))
	if err != nil {
		return nil, err
	}

	return &StrengthMetrics{
		evaluations:  evaluations,
		scores:       scores,
		cacheLookups: cacheLookups,
		rejections:   rejections,
	}, nil
}

// RegisterCollector registers collector with reg, returning the existing collector when an
// identical one is already registered.
func RegisterCollector[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return collector, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return collector, nil
}

// ObserveEvaluation counts one evaluation and records its score.
func (m *StrengthMetrics) ObserveEvaluation(level domain.StrengthLevel, score int, source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.evaluations.WithLabelValues(level.String(), source).Inc()
	m.scores.Observe(float64(score))
}

// IncCacheHit counts an evaluation served from cache.
func (m *StrengthMetrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts an evaluation computed after a cache miss.
func (m *StrengthMetrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// IncRejection counts a policy rejection.
func (m *StrengthMetrics) IncRejection(code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(code).Inc()
}
