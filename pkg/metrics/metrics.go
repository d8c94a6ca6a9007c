package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts scans by language group.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosec_autofix_scans_total",
		Help: "Total scans by language",
	}, []string{"language"})

	// IssuesTotal counts detected issues by concern and severity.
	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosec_autofix_issues_total",
		Help: "Total issues detected by category and severity",
	}, []string{"category", "severity"})

	// FixesTotal counts generated fixes by fix type.
	FixesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosec_autofix_fixes_total",
		Help: "Total fixes generated by fix type",
	}, []string{"fix_type"})

	// FixesApplied counts fixes written back into source text.
	FixesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosec_autofix_fixes_applied_total",
		Help: "Total fixes applied to source text",
	})

	// AIFallbacks counts AI fix attempts that degraded to rule-based fixes, by reason.
	AIFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosec_autofix_ai_fallbacks_total",
		Help: "AI fix attempts that fell back to rule-based fixes",
	}, []string{"reason"})

	// AICacheHits counts AI fixes served from cache.
	AICacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosec_autofix_ai_cache_hits_total",
		Help: "AI fixes served from the in-process cache",
	})

	// AIRequestDuration tracks provider latency.
	AIRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gosec_autofix_ai_request_duration_seconds",
		Help:    "AI provider request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})
)

// Fallback reasons.
const (
	ReasonError   = "error"
	ReasonEmpty   = "empty"
	ReasonTimeout = "timeout"
)

// ObserveAI records the duration of a provider call that started at start.
func ObserveAI(start time.Time) {
	AIRequestDuration.Observe(time.Since(start).Seconds())
}
