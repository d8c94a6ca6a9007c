package report

import (
	"encoding/json"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/user/gosec-autofix/pkg/engine"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	toolName     = "gosec-autofix"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
}

type sarifRenderer struct {
	version string
}

func (s sarifRenderer) Render(w io.Writer, in Input) error {
	rules := map[string]string{}
	results := make([]sarifResult, 0, in.TotalIssues)

	for _, r := range sortedRows(in) {
		id := ruleID(r.issue)
		rules[id] = r.issue.Message
		line := r.issue.Line
		if line <= 0 {
			line = 1
		}
		uri := r.path
		if strings.TrimSpace(uri) == "" {
			uri = "UNKNOWN"
		}
		results = append(results, sarifResult{
			RuleID:  id,
			Level:   levelFor(r.issue.Severity),
			Message: sarifMessage{Text: messageText(r.issue)},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: uri},
					Region:           sarifRegion{StartLine: line, StartColumn: r.issue.Column + 1},
				},
			}},
		})
	}

	ids := make([]string, 0, len(rules))
	for id := range rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	driver := sarifDriver{Name: toolName, Version: s.version, Rules: make([]sarifRule, 0, len(ids))}
	for _, id := range ids {
		driver.Rules = append(driver.Rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: rules[id]}})
	}

	log := sarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    []sarifRun{{Tool: sarifTool{Driver: driver}, Results: results}},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// ruleID derives a stable id such as "passwords/password-hardcoded".
func ruleID(is engine.Issue) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(is.Message), "-"), "-")
	return is.Subcategory + "/" + slug
}

// messageText leaves security matches out; they are the secret itself.
func messageText(is engine.Issue) string {
	if is.Category == engine.ConcernSecurity || is.Match == "" {
		return is.Message
	}
	return is.Message + ": " + is.Match
}

func levelFor(s engine.Severity) string {
	switch s {
	case engine.SeverityCritical, engine.SeverityHigh:
		return "error"
	case engine.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
