package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/fixer"
	"github.com/user/gosec-autofix/pkg/metrics"
)

// Analyzer ties a scanner to a fix generator. Both are shared and safe for
// concurrent use.
type Analyzer struct {
	scanner *engine.Scanner
	fixes   *fixer.Service
}

// New creates an analyzer. A nil scanner uses the built-in catalog; a nil
// fix service disables fix generation.
func New(scanner *engine.Scanner, fixes *fixer.Service) *Analyzer {
	if scanner == nil {
		scanner = engine.NewScanner(nil)
	}
	return &Analyzer{scanner: scanner, fixes: fixes}
}

func (a *Analyzer) Scanner() *engine.Scanner { return a.scanner }

func (a *Analyzer) Fixes() *fixer.Service { return a.fixes }

type FileInfo struct {
	Extension           string `json:"extension"`
	LinesOfCode         int    `json:"lines_of_code"`
	Characters          int    `json:"characters"`
	EstimatedComplexity string `json:"estimated_complexity"`
}

type Summary struct {
	TotalIssues        int `json:"total_issues"`
	CriticalIssues     int `json:"critical_issues"`
	HighIssues         int `json:"high_issues"`
	MediumIssues       int `json:"medium_issues"`
	LowIssues          int `json:"low_issues"`
	FixableIssues      int `json:"fixable_issues"`
	AIFixesAvailable   int `json:"ai_fixes_available"`
	RuleFixesAvailable int `json:"rule_fixes_available"`
}

type Recommendations struct {
	ImmediateActions        []string `json:"immediate_actions"`
	CodeQualityImprovements []string `json:"code_quality_improvements"`
	SecurityEnhancements    []string `json:"security_enhancements"`
}

// Report is the single-file analysis result.
type Report struct {
	Status            string             `json:"status"`
	Timestamp         time.Time          `json:"timestamp"`
	FileInfo          FileInfo           `json:"file_info"`
	Summary           Summary            `json:"summary"`
	SecurityScore     int                `json:"security_score"`
	RiskLevel         engine.Severity    `json:"risk_level"`
	CategorizedIssues engine.Categorized `json:"categorized_issues"`
	IssuesFound       []engine.Issue     `json:"issues_found"`
	IntelligentFixes  []engine.Fix       `json:"intelligent_fixes"`
	AIStatus          *fixer.Status      `json:"ai_status,omitempty"`
	Recommendations   Recommendations    `json:"recommendations"`
}

// Scan runs the scanner and records metrics.
func (a *Analyzer) Scan(code, ext string) []engine.Issue {
	issues := a.scanner.Scan(code, ext)
	metrics.ScansTotal.WithLabelValues(engine.NormalizeLanguage(ext)).Inc()
	for _, is := range issues {
		metrics.IssuesTotal.WithLabelValues(string(is.Category), string(is.Severity)).Inc()
	}
	return issues
}

// AnalyzeCode scans code and builds the full single-file report. Fixes are
// generated only when withFixes is set and a fix service is configured.
func (a *Analyzer) AnalyzeCode(ctx context.Context, code, ext string, withFixes bool) Report {
	issues := a.Scan(code, ext)
	engine.SortBySeverity(issues)

	fixes := []engine.Fix{}
	if withFixes && a.fixes != nil && len(issues) > 0 {
		fixes = a.fixes.GenerateFixes(ctx, issues, code, ext)
	}
	for i := range issues {
		s := engine.SuggestionFor(issues[i].Type)
		issues[i].FixSuggestion = &s
	}
	if issues == nil {
		issues = []engine.Issue{}
	}

	score := engine.Score(issues)
	counts := engine.SeverityCounts(issues)
	lines := len(strings.Split(code, "\n"))

	r := Report{
		Status:    "analyzed",
		Timestamp: time.Now().UTC(),
		FileInfo: FileInfo{
			Extension:           ext,
			LinesOfCode:         lines,
			Characters:          len([]rune(code)),
			EstimatedComplexity: complexity(lines),
		},
		Summary: Summary{
			TotalIssues:        len(issues),
			CriticalIssues:     counts[engine.SeverityCritical],
			HighIssues:         counts[engine.SeverityHigh],
			MediumIssues:       counts[engine.SeverityMedium],
			LowIssues:          counts[engine.SeverityLow],
			FixableIssues:      countIssues(issues, func(is engine.Issue) bool { return is.FixAvailable }),
			AIFixesAvailable:   countFixes(fixes, engine.FixTypeAIGenerated),
			RuleFixesAvailable: countFixes(fixes, engine.FixTypeRuleBased),
		},
		SecurityScore:     score,
		RiskLevel:         engine.RiskLevel(score),
		CategorizedIssues: engine.Categorize(issues),
		IssuesFound:       issues,
		IntelligentFixes:  fixes,
		Recommendations:   recommend(issues, counts),
	}
	if a.fixes != nil {
		st := a.fixes.Status()
		r.AIStatus = &st
	}
	return r
}

func complexity(lines int) string {
	switch {
	case lines > 100:
		return "HIGH"
	case lines > 50:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func recommend(issues []engine.Issue, counts map[engine.Severity]int) Recommendations {
	debug := countIssues(issues, func(is engine.Issue) bool { return is.Type == engine.TypeDebugStatement })
	return Recommendations{
		ImmediateActions: []string{
			fmt.Sprintf("Fix %d critical security issues", counts[engine.SeverityCritical]),
			fmt.Sprintf("Remove %d debug statements", debug),
			fmt.Sprintf("Address %d high-priority issues", counts[engine.SeverityHigh]),
		},
		CodeQualityImprovements: []string{
			"Implement proper error handling",
			"Add input validation",
			"Use secure coding practices",
			"Add comprehensive logging",
		},
		SecurityEnhancements: []string{
			"Use environment variables for secrets",
			"Implement input sanitization",
			"Add authentication and authorization",
			"Regular security audits",
		},
	}
}

func countIssues(issues []engine.Issue, pred func(engine.Issue) bool) int {
	n := 0
	for _, is := range issues {
		if pred(is) {
			n++
		}
	}
	return n
}

func countFixes(fixes []engine.Fix, fixType string) int {
	n := 0
	for _, f := range fixes {
		if f.FixType == fixType {
			n++
		}
	}
	return n
}
