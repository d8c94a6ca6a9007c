package fixer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/user/gosec-autofix/pkg/engine"
)

const maxRawExplanation = 200

var (
	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
	codeFence  = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)\\n```")
)

type aiFixPayload struct {
	FixedCode     string   `json:"fixed_code"`
	Explanation   string   `json:"explanation"`
	EnvVarsNeeded []string `json:"env_vars_needed"`
	Confidence    string   `json:"confidence"`
}

// ParseResponse turns free-form model output into a Fix. It tries, in order,
// an embedded JSON object, the first fenced code block, and finally the raw
// text as an explanation. It reports false only for blank input.
func ParseResponse(text string, issue engine.Issue) (engine.Fix, bool) {
	if strings.TrimSpace(text) == "" {
		return engine.Fix{}, false
	}
	fix := engine.Fix{
		OriginalCode:  issue.Match,
		EnvVarsNeeded: []string{},
		Line:          issue.Line,
	}

	if raw := jsonObject.FindString(text); raw != "" {
		var p aiFixPayload
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			fix.FixedCode = p.FixedCode
			fix.Explanation = p.Explanation
			if fix.Explanation == "" {
				fix.Explanation = "AI-generated fix"
			}
			if p.EnvVarsNeeded != nil {
				fix.EnvVarsNeeded = p.EnvVarsNeeded
			}
			fix.Confidence = normalizeConfidence(p.Confidence)
			fix.FixType = engine.FixTypeAIGenerated
			return fix, true
		}
	}

	if m := codeFence.FindStringSubmatch(text); m != nil {
		fix.FixedCode = strings.TrimSpace(m[1])
		fix.Explanation = "AI-suggested fix"
		fix.Confidence = engine.ConfidenceMedium
		fix.FixType = engine.FixTypeAIGenerated
		return fix, true
	}

	fix.Explanation = text
	if r := []rune(text); len(r) > maxRawExplanation {
		fix.Explanation = string(r[:maxRawExplanation]) + "..."
	}
	fix.Confidence = engine.ConfidenceLow
	fix.FixType = engine.FixTypeAISuggestion
	return fix, true
}

func normalizeConfidence(c string) string {
	switch c = strings.ToUpper(strings.TrimSpace(c)); c {
	case engine.ConfidenceHigh, engine.ConfidenceMedium, engine.ConfidenceLow:
		return c
	}
	return engine.ConfidenceMedium
}
