package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/engine"
)

// File is the set of issues found in one path.
type File struct {
	Path   string         `json:"path"`
	Issues []engine.Issue `json:"issues"`
}

// Input is what every renderer consumes.
type Input struct {
	Files         []File          `json:"files"`
	TotalIssues   int             `json:"total_issues"`
	SecurityScore int             `json:"security_score"`
	RiskLevel     engine.Severity `json:"risk_level"`
}

// FromRepository converts a repository analysis into renderer input.
func FromRepository(r *analysis.RepositoryReport) Input {
	in := Input{
		TotalIssues:   r.TotalIssues,
		SecurityScore: r.SecurityScore,
		RiskLevel:     r.RiskLevel,
	}
	for _, fr := range r.FileResults {
		in.Files = append(in.Files, File{Path: fr.Filename, Issues: fr.Issues})
	}
	return in
}

// FromIssues builds renderer input for a single file.
func FromIssues(path string, issues []engine.Issue) Input {
	score := engine.Score(issues)
	return Input{
		Files:         []File{{Path: path, Issues: issues}},
		TotalIssues:   len(issues),
		SecurityScore: score,
		RiskLevel:     engine.RiskLevel(score),
	}
}

// Renderer writes a report.
type Renderer interface {
	Render(w io.Writer, in Input) error
}

// Formats lists the accepted New arguments.
var Formats = []string{"table", "json", "sarif"}

// New returns the renderer for format.
func New(format, toolVersion string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return tableRenderer{}, nil
	case "json":
		return jsonRenderer{}, nil
	case "sarif":
		return sarifRenderer{version: toolVersion}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want %s)", format, strings.Join(Formats, ", "))
	}
}

type tableRenderer struct{}

func (tableRenderer) Render(w io.Writer, in Input) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tFILE\tLINE\tCATEGORY\tMESSAGE\tMATCH")
	for _, row := range sortedRows(in) {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s/%s\t%s\t%s\n",
			row.issue.Severity, row.path, row.issue.Line, row.issue.Category, row.issue.Subcategory,
			row.issue.Message, engine.Truncate(row.issue.Match, 40))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d issues, security score %d/100, risk %s\n", in.TotalIssues, in.SecurityScore, in.RiskLevel)
	return err
}

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, in Input) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(in)
}

type row struct {
	path  string
	issue engine.Issue
}

func sortedRows(in Input) []row {
	var rows []row
	for _, f := range in.Files {
		for _, is := range f.Issues {
			rows = append(rows, row{path: f.Path, issue: is})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.issue.Severity.Rank() != b.issue.Severity.Rank() {
			return a.issue.Severity.Rank() < b.issue.Severity.Rank()
		}
		if a.path != b.path {
			return a.path < b.path
		}
		return a.issue.Line < b.issue.Line
	})
	return rows
}
