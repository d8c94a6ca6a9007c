package fixer

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/llm"
	"github.com/user/gosec-autofix/pkg/logging"
	"github.com/user/gosec-autofix/pkg/metrics"
)

// ErrNotConfigured is returned when an AI strategy is requested without a provider.
var ErrNotConfigured = errors.New("AI fix service not configured")

const (
	defaultTimeout = 30 * time.Second
	defaultRate    = 2
)

// AIFixStrategy asks a language model for fixes and falls back to a
// deterministic strategy on any failure. Parsed answers are cached for the
// lifetime of the strategy, keyed by issue type, severity and match.
type AIFixStrategy struct {
	provider llm.Provider
	fallback Strategy
	timeout  time.Duration
	limiter  *rate.Limiter

	cache sync.Map // string -> engine.Fix
	group singleflight.Group
}

// AIOption customizes an AIFixStrategy.
type AIOption func(*AIFixStrategy)

// WithTimeout bounds each provider call, including time spent waiting on the rate limiter.
func WithTimeout(d time.Duration) AIOption {
	return func(a *AIFixStrategy) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithRateLimit caps provider calls per second. A non-positive value disables the limit.
func WithRateLimit(perSecond float64) AIOption {
	return func(a *AIFixStrategy) {
		if perSecond <= 0 {
			a.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithFallback replaces the rule-based fallback.
func WithFallback(s Strategy) AIOption {
	return func(a *AIFixStrategy) {
		if s != nil {
			a.fallback = s
		}
	}
}

func NewAIFixStrategy(p llm.Provider, opts ...AIOption) (*AIFixStrategy, error) {
	if p == nil {
		return nil, ErrNotConfigured
	}
	a := &AIFixStrategy{
		provider: p,
		fallback: NewRuleBasedFixStrategy(),
		timeout:  defaultTimeout,
		limiter:  rate.NewLimiter(rate.Limit(defaultRate), defaultRate),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *AIFixStrategy) Name() string { return "ai:" + a.provider.Name() }

// Provider returns the backing language model provider.
func (a *AIFixStrategy) Provider() llm.Provider { return a.provider }

func cacheKey(issue engine.Issue) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(issue.Match))
	return fmt.Sprintf("%s_%s_%x", issue.Type, issue.Severity, h.Sum64())
}

func (a *AIFixStrategy) GenerateFix(ctx context.Context, issue engine.Issue, codeContext, ext string) engine.Fix {
	key := cacheKey(issue)
	if v, ok := a.cache.Load(key); ok {
		metrics.AICacheHits.Inc()
		return rebind(v.(engine.Fix), issue)
	}

	v, err, _ := a.group.Do(key, func() (interface{}, error) {
		if v, ok := a.cache.Load(key); ok {
			return v, nil
		}
		fix, err := a.ask(ctx, issue, codeContext, ext)
		if err != nil {
			return nil, err
		}
		a.cache.Store(key, fix)
		return fix, nil
	})
	if err != nil {
		logging.Warnf("AI fix for %s on line %d failed, using rule-based fix: %v", issue.Type, issue.Line, err)
		metrics.AIFallbacks.WithLabelValues(fallbackReason(err)).Inc()
		return a.fallback.GenerateFix(ctx, issue, codeContext, ext)
	}
	return rebind(v.(engine.Fix), issue)
}

func (a *AIFixStrategy) ask(ctx context.Context, issue engine.Issue, codeContext, ext string) (engine.Fix, error) {
	prompt, err := BuildPrompt(issue, codeContext, ext)
	if err != nil {
		return engine.Fix{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.limiter.Wait(ctx); err != nil {
		return engine.Fix{}, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	text, err := a.provider.Generate(ctx, prompt)
	metrics.ObserveAI(start)
	if err != nil {
		return engine.Fix{}, err
	}
	fix, ok := ParseResponse(text, issue)
	if !ok {
		return engine.Fix{}, llm.ErrEmptyResponse
	}
	logging.Debugf("AI fix for %s on line %d parsed as %s", issue.Type, issue.Line, fix.FixType)
	return fix, nil
}

// rebind points a shared fix at the issue it is being returned for.
func rebind(f engine.Fix, issue engine.Issue) engine.Fix {
	f.OriginalCode = issue.Match
	f.Line = issue.Line
	f.Applied = false
	f.EnvVarsNeeded = append([]string{}, f.EnvVarsNeeded...)
	return f
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.ReasonTimeout
	case errors.Is(err, llm.ErrEmptyResponse):
		return metrics.ReasonEmpty
	default:
		return metrics.ReasonError
	}
}
