package fixer

import (
	"context"
	"io"

	"github.com/user/gosec-autofix/pkg/config"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/llm"
	"github.com/user/gosec-autofix/pkg/logging"
	"github.com/user/gosec-autofix/pkg/metrics"
)

// Service is the fix generator used by the CLI, server and watcher. It is
// constructed once at start-up and shared.
type Service struct {
	strategy Strategy
	ai       *AIFixStrategy
	closer   io.Closer
}

// NewService wraps a strategy. Pass an *AIFixStrategy to enable AI fixes.
func NewService(s Strategy) *Service {
	if s == nil {
		s = NewRuleBasedFixStrategy()
	}
	svc := &Service{strategy: s}
	if ai, ok := s.(*AIFixStrategy); ok {
		svc.ai = ai
		if c, ok := ai.Provider().(io.Closer); ok {
			svc.closer = c
		}
	}
	return svc
}

// Close releases the provider client, if it holds one.
func (s *Service) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// NewServiceFromConfig selects the AI strategy when the configured provider
// has an API key and the provider can be built; otherwise rule-based.
func NewServiceFromConfig(ctx context.Context, cfg *config.Config) *Service {
	if !cfg.AIConfigured() {
		logging.Debugf("No API key for %s, using rule-based fixes", cfg.Provider())
		return NewService(nil)
	}

	name := cfg.Provider()
	p, err := llm.NewProvider(ctx, name, llm.Options{
		APIKey:  cfg.GetAPIKey(name),
		Model:   cfg.SelectedModel,
		BaseURL: cfg.Providers[name].BaseURL,
		Params:  llm.FixParams,
	})
	if err != nil {
		logging.Warnf("Failed to initialize %s provider, using rule-based fixes: %v", name, err)
		return NewService(nil)
	}

	ai, err := NewAIFixStrategy(p, WithTimeout(cfg.Timeout()), WithRateLimit(cfg.RateLimit()))
	if err != nil {
		return NewService(nil)
	}
	logging.Infof("AI fix generation enabled via %s (%s)", name, cfg.SelectedModel)
	return NewService(ai)
}

// Configured reports whether fixes come from a language model.
func (s *Service) Configured() bool {
	return s.ai != nil
}

// Strategy returns the active strategy.
func (s *Service) Strategy() Strategy {
	return s.strategy
}

// GenerateFixes returns one Fix per Issue. When AI is configured, issues are
// annotated in place with ai_fix_available and ai_fix.
func (s *Service) GenerateFixes(ctx context.Context, issues []engine.Issue, code, ext string) []engine.Fix {
	fixes := GenerateFixes(ctx, s.strategy, issues, code, ext)
	for i := range fixes {
		metrics.FixesTotal.WithLabelValues(fixes[i].FixType).Inc()
		if s.ai == nil {
			continue
		}
		switch fixes[i].FixType {
		case engine.FixTypeAIGenerated, engine.FixTypeAISuggestion:
			f := fixes[i]
			issues[i].AIFixAvailable = true
			issues[i].AIFix = &f
		}
	}
	return fixes
}

// Status describes the fix generator for health endpoints.
type Status struct {
	Available  bool     `json:"available"`
	Configured bool     `json:"configured"`
	Provider   string   `json:"provider,omitempty"`
	Status     string   `json:"status"`
	FixTypes   []string `json:"fix_types"`
}

func (s *Service) Status() Status {
	st := Status{
		Available:  true,
		Configured: s.ai != nil,
		FixTypes:   []string{engine.FixTypeRuleBased, engine.FixTypeManualReview},
	}
	if s.ai != nil {
		st.Provider = s.ai.Provider().Name()
		st.Status = "AI fixes enabled"
		st.FixTypes = append([]string{engine.FixTypeAIGenerated, engine.FixTypeAISuggestion}, st.FixTypes...)
	} else {
		st.Status = "API key not configured - using rule-based fixes"
	}
	return st
}
