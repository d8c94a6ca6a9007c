package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRule(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "internal.yaml", `
concern: security
group: internal
patterns:
  - regex: 'corp_[a-z0-9]{12}'
    severity: critical
    label: Corp Service Token
  - regex: '(broken'
    severity: HIGH
    label: Broken Pattern
`)
	writeRule(t, dir, "go.yml", `
concern: debug
group: go
patterns:
  - regex: 'fmt\.Println\('
    severity: MEDIUM
    label: Println Call
`)
	writeRule(t, dir, "README.md", "ignored")

	cat, err := LoadRules(nil, dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().TotalPatterns()+3, cat.TotalPatterns())

	issues := NewScanner(cat).Scan("token := \"corp_abcdef123456\"\nfmt.Println(token)\n", "go")

	tok, ok := findIssue(issues, func(is Issue) bool { return is.Message == "Corp Service Token" })
	require.True(t, ok)
	assert.Equal(t, SeverityCritical, tok.Severity)
	assert.Equal(t, "internal", tok.Subcategory)

	dbg, ok := findIssue(issues, func(is Issue) bool { return is.Message == "Println Call" })
	require.True(t, ok)
	assert.Equal(t, 2, dbg.Line)

	_, ok = findIssue(issues, func(is Issue) bool { return is.Message == "Broken Pattern" })
	assert.False(t, ok)
}

func TestLoadRulesRejectsBadFiles(t *testing.T) {
	tests := map[string]string{
		"severity": "concern: security\ngroup: x\npatterns:\n  - regex: a\n    severity: URGENT\n",
		"concern":  "concern: style\ngroup: x\npatterns: []\n",
		"group":    "concern: debug\npatterns: []\n",
		"regex":    "concern: debug\ngroup: go\npatterns:\n  - severity: LOW\n",
		"language": "concern: quality\ngroup: internal\npatterns: []\n",
		"general":  "concern: performance\ngroup: general\npatterns: []\n",
		"yaml":     "concern: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeRule(t, dir, "rule.yaml", body)
			_, err := LoadRules(nil, dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadRulesNormalizesLanguageGroups(t *testing.T) {
	dir := t.TempDir()
	writeRule(t, dir, "py.yaml", `
concern: quality
group: py
patterns:
  - regex: 'assert\s'
    severity: LOW
    label: Assert In Production Code
`)

	cat, err := LoadRules(nil, dir)
	require.NoError(t, err)

	g, ok := cat.Group(ConcernQuality, "python")
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(g.Patterns), 1)
	_, ok = cat.Group(ConcernQuality, "py")
	assert.False(t, ok)

	for _, tag := range []string{"py", "python"} {
		issues := NewScanner(cat).Scan("assert x\n", tag)
		_, found := findIssue(issues, func(is Issue) bool { return is.Message == "Assert In Production Code" })
		assert.True(t, found, "tag %q", tag)
	}
}

func TestLoadRulesMissingDir(t *testing.T) {
	_, err := LoadRules(nil, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
