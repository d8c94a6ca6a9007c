package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaselineCompare(t *testing.T) {
	unchanged := Issue{Subcategory: "passwords", Message: "Password Hardcoded", Match: `password = "hunter22"`, Severity: SeverityCritical, Line: 3}
	fixed := Issue{Subcategory: "python", Message: "Print Statement", Match: `print("x")`, Severity: SeverityMedium, Line: 7}
	added := Issue{Subcategory: "python", Message: "Bare Except Clause", Match: "except:", Severity: SeverityMedium, Line: 9}

	baseline := NewBaseline()
	baseline.Add("app.py", []Issue{unchanged, fixed})

	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, baseline.Save(path))

	loaded, err := LoadBaseline(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	moved := unchanged
	moved.Line = 10
	current := NewBaseline()
	current.Add("app.py", []Issue{moved, added})

	diff := current.Compare(loaded)

	require.Len(t, diff.Unchanged, 1)
	assert.Equal(t, "Password Hardcoded", diff.Unchanged[0].Issue.Message)
	require.Len(t, diff.New, 1)
	assert.Equal(t, "Bare Except Clause", diff.New[0].Issue.Message)
	require.Len(t, diff.Fixed, 1)
	assert.Equal(t, "Print Statement", diff.Fixed[0].Issue.Message)

	report := diff.Report(10)
	assert.Contains(t, report, "NEW ISSUES: 1")
	assert.Contains(t, report, "[+] [MEDIUM] app.py:9")
}

func TestBaselineAddDeduplicates(t *testing.T) {
	is := Issue{Subcategory: "api_keys", Message: "API Key Exposure", Match: "k", Line: 1}
	b := NewBaseline()
	b.Add("a.py", []Issue{is, is})
	b.Add("b.py", []Issue{is})
	assert.Equal(t, 2, b.Len())
}

func TestLoadBaselineMissing(t *testing.T) {
	_, err := LoadBaseline(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}
