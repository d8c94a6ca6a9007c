package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/user/gosec-autofix/pkg/config"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/logging"
)

const scanWorkers = 4

// FileResult holds the findings for one file with at least one issue.
type FileResult struct {
	Filename    string         `json:"filename"`
	IssuesCount int            `json:"issues_count"`
	Issues      []engine.Issue `json:"issues"`
	Fixes       []engine.Fix   `json:"fixes"`
	FixesCount  int            `json:"fixes_count"`

	Content string `json:"-"`
}

// RepositoryReport is the whole-directory analysis result.
type RepositoryReport struct {
	AnalysisID        string             `json:"analysis_id"`
	Repository        string             `json:"repository"`
	Timestamp         time.Time          `json:"timestamp"`
	FilesAnalyzed     int                `json:"files_analyzed"`
	TotalIssues       int                `json:"total_issues"`
	SecurityScore     int                `json:"security_score"`
	RiskLevel         engine.Severity    `json:"risk_level"`
	CategorizedIssues engine.Categorized `json:"categorized_issues"`
	FileResults       []FileResult       `json:"file_results"`
	Status            string             `json:"status"`
}

// ListFiles returns the analyzable files under root, relative to root and
// sorted, capped at limit when limit > 0.
func ListFiles(root string, filter Filter, limit int) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." && filter.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.Analyzable(rel) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// AnalyzeRepository scans the analyzable files of a local checkout in
// parallel. Unreadable files are logged and skipped.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, root string, cfg *config.Config, withFixes bool) (*RepositoryReport, error) {
	filter := Filter{ExcludedFiles: cfg.ExcludedFiles, ExcludedExtensions: cfg.ExcludedExtensions}
	files, err := ListFiles(root, filter, cfg.MaxFilesToAnalyze)
	if err != nil {
		return nil, err
	}
	logging.Infof("Analyzing %d files in %s", len(files), root)

	results := make([]*FileResult, len(files))
	analyzed := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
			if err != nil {
				logging.Warnf("Error reading %s: %v", name, err)
				return nil
			}
			analyzed[i] = true
			res := a.analyzeFile(gctx, name, string(data), withFixes)
			if res.IssuesCount > 0 {
				results[i] = res
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &RepositoryReport{
		AnalysisID:  uuid.NewString(),
		Repository:  filepath.Base(filepath.Clean(root)),
		Timestamp:   time.Now().UTC(),
		FileResults: []FileResult{},
		Status:      "analyzed",
	}
	var all []engine.Issue
	for i, res := range results {
		if analyzed[i] {
			report.FilesAnalyzed++
		}
		if res != nil {
			all = append(all, res.Issues...)
			report.FileResults = append(report.FileResults, *res)
		}
	}
	report.TotalIssues = len(all)
	report.SecurityScore = engine.Score(all)
	report.RiskLevel = engine.RiskLevel(report.SecurityScore)
	report.CategorizedIssues = engine.Categorize(all)

	logging.Infof("Completed analysis of %s: %d files analyzed, %d issues found", report.Repository, report.FilesAnalyzed, report.TotalIssues)
	return report, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, name, content string, withFixes bool) *FileResult {
	ext := Extension(name)
	issues := a.Scan(content, ext)
	res := &FileResult{
		Filename:    name,
		IssuesCount: len(issues),
		Issues:      issues,
		Fixes:       []engine.Fix{},
		Content:     content,
	}
	if withFixes && a.fixes != nil && len(issues) > 0 {
		res.Fixes = a.fixes.GenerateFixes(ctx, issues, content, ext)
	}
	res.FixesCount = len(res.Fixes)
	return res
}
