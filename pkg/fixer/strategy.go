package fixer

import (
	"context"

	"github.com/user/gosec-autofix/pkg/engine"
)

// ContextRadius is the number of lines either side of an issue sent as context.
const ContextRadius = 5

// Strategy produces a Fix for one Issue. Implementations never fail; when no
// fix can be produced they return a manual_review placeholder.
type Strategy interface {
	Name() string
	GenerateFix(ctx context.Context, issue engine.Issue, codeContext, ext string) engine.Fix
}

// GenerateFixes returns exactly one Fix per Issue, in issue order.
func GenerateFixes(ctx context.Context, s Strategy, issues []engine.Issue, code, ext string) []engine.Fix {
	fixes := make([]engine.Fix, 0, len(issues))
	for _, is := range issues {
		fixes = append(fixes, s.GenerateFix(ctx, is, ExtractContext(code, is.Line, ContextRadius), ext))
	}
	return fixes
}

func manualReview(issue engine.Issue) engine.Fix {
	return engine.Fix{
		OriginalCode:  issue.Match,
		FixedCode:     "",
		Explanation:   "Manual review needed for " + issue.Type + " issue",
		EnvVarsNeeded: []string{},
		Confidence:    engine.ConfidenceLow,
		FixType:       engine.FixTypeManualReview,
		Line:          issue.Line,
	}
}
