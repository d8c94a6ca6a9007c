package fixer

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/user/gosec-autofix/pkg/engine"
)

//go:embed prompts/fix_prompt.tmpl
var fixPromptText string

var fixPrompt = template.Must(template.New("fix").Parse(fixPromptText))

var languageNames = map[string]string{
	"py":   "Python",
	"js":   "JavaScript",
	"ts":   "TypeScript",
	"jsx":  "React JSX",
	"tsx":  "React TSX",
	"java": "Java",
	"cpp":  "C++",
	"c":    "C",
	"php":  "PHP",
	"rb":   "Ruby",
	"go":   "Go",
	"cs":   "C#",
	"sql":  "SQL",
}

var guidelines = map[string][]string{
	engine.TypeSecretExposure: {
		"Replace hardcoded secrets with environment variables",
		"Use os.getenv() for Python or process.env for JavaScript",
		"Suggest appropriate environment variable names",
		"Add error handling for missing environment variables",
	},
	engine.TypeDebugStatement: {
		"Remove or replace debug statements with proper logging",
		"Use logging module for Python or console methods appropriately",
		"Keep any essential error handling",
		"Don't remove legitimate user-facing messages",
	},
	engine.TypeCodeQuality: {
		"Fix syntax or logic issues",
		"Improve code structure and readability",
		"Add proper error handling where needed",
		"Follow language-specific conventions",
	},
	engine.TypePerformance: {
		"Optimize the code for better performance",
		"Reduce computational complexity where possible",
		"Use more efficient data structures or algorithms",
		"Maintain the same output/behavior",
	},
}

// LanguageName returns a display name for a file extension.
func LanguageName(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if name, ok := languageNames[ext]; ok {
		return name
	}
	return strings.ToUpper(ext)
}

// BuildPrompt renders the fix request sent to a language model.
func BuildPrompt(issue engine.Issue, codeContext, ext string) (string, error) {
	ext = strings.TrimPrefix(ext, ".")
	data := struct {
		Issue      engine.Issue
		Language   string
		Extension  string
		Context    string
		Guidelines []string
	}{issue, LanguageName(ext), ext, codeContext, guidelines[issue.Type]}

	var buf bytes.Buffer
	if err := fixPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render fix prompt: %w", err)
	}
	return buf.String(), nil
}

// ExtractContext returns up to radius lines either side of the 1-based line,
// clipped to the bounds of code.
func ExtractContext(code string, line, radius int) string {
	if code == "" {
		return ""
	}
	lines := strings.Split(code, "\n")
	start := line - radius - 1
	if start < 0 {
		start = 0
	}
	end := line + radius
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}
