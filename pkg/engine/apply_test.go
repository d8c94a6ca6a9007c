package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFixes() []Fix {
	return []Fix{
		{
			OriginalCode:  `api_key = "abc12345"`,
			FixedCode:     `api_key = os.getenv('API_KEY')`,
			EnvVarsNeeded: []string{"API_KEY"},
			FixType:       FixTypeRuleBased,
			Line:          1,
		},
		{
			OriginalCode: `print("debug")`,
			FixedCode:    `# print("debug")  # TODO: Remove debug statement`,
			FixType:      FixTypeRuleBased,
			Line:         3,
		},
	}
}

func TestApplyFixes(t *testing.T) {
	text := "api_key = \"abc12345\"\nx = 1\n    print(\"debug\")\n"
	fixes := sampleFixes()

	out, applied, env := ApplyFixes(text, fixes)

	assert.Equal(t, 2, applied)
	assert.Equal(t, []string{"API_KEY"}, env)
	assert.Equal(t, "api_key = os.getenv('API_KEY')\nx = 1\n    # print(\"debug\")  # TODO: Remove debug statement\n", out)
	assert.True(t, fixes[0].Applied)
	assert.True(t, fixes[1].Applied)
	assert.Equal(t, 1, fixes[0].Line, "caller slice order must be preserved")
}

func TestApplyFixesIdempotent(t *testing.T) {
	text := "api_key = \"abc12345\"\nx = 1\nprint(\"debug\")"
	fixes := sampleFixes()

	once, n1, _ := ApplyFixes(text, fixes)
	require.Equal(t, 2, n1)

	twice, n2, env := ApplyFixes(once, sampleFixes())
	assert.Equal(t, 0, n2)
	assert.Empty(t, env)
	assert.Equal(t, once, twice)
}

func TestApplyFixesReplacementShorterThanOriginal(t *testing.T) {
	text := `x = compute()  # print("dbg")`
	fixes := []Fix{{OriginalCode: text, FixedCode: "x = compute()", Line: 1}}

	out, applied, _ := ApplyFixes(text, fixes)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "x = compute()", out)
	assert.True(t, fixes[0].Applied)
}

func TestApplyFixesReplacementElsewhereOnLine(t *testing.T) {
	text := `token = "abcdef123"  # was: token = os.getenv('TOKEN')`
	fixes := []Fix{{OriginalCode: `token = "abcdef123"`, FixedCode: "token = os.getenv('TOKEN')", Line: 1}}

	out, applied, _ := ApplyFixes(text, fixes)
	assert.Equal(t, 1, applied)
	assert.Equal(t, "token = os.getenv('TOKEN')  # was: token = os.getenv('TOKEN')", out)
}

func TestApplyFixesSkipsBadFixes(t *testing.T) {
	text := "a = 1\nb = 2"
	fixes := []Fix{
		{OriginalCode: "a = 1", FixedCode: "a = 3", Line: 0},
		{OriginalCode: "a = 1", FixedCode: "a = 3", Line: 10},
		{OriginalCode: "", FixedCode: "a = 3", Line: 1},
		{OriginalCode: "a = 1", FixedCode: "   ", Line: 1},
		{OriginalCode: "a = 1", FixedCode: "a = 3", Line: 2},
	}

	out, applied, env := ApplyFixes(text, fixes)

	assert.Equal(t, text, out)
	assert.Equal(t, 0, applied)
	assert.Empty(t, env)
	for _, f := range fixes {
		assert.False(t, f.Applied)
	}
}

func TestApplyFixesDescendingOrder(t *testing.T) {
	text := "x\nx\nx"
	fixes := []Fix{
		{OriginalCode: "x", FixedCode: "one", Line: 1},
		{OriginalCode: "x", FixedCode: "three", Line: 3},
		{OriginalCode: "x", FixedCode: "two", Line: 2},
	}

	out, applied, _ := ApplyFixes(text, fixes)
	assert.Equal(t, 3, applied)
	assert.Equal(t, "one\ntwo\nthree", out)
}

func TestEnvVarsFrom(t *testing.T) {
	fixes := []Fix{
		{EnvVarsNeeded: []string{"B", "A"}},
		{EnvVarsNeeded: []string{"A", ""}},
	}
	assert.Equal(t, []string{"A", "B"}, EnvVarsFrom(fixes))
}

func TestBuildEnvTemplate(t *testing.T) {
	assert.Equal(t, "", BuildEnvTemplate(nil))
	assert.Equal(t, "", BuildEnvTemplate([]string{}))

	got := BuildEnvTemplate([]string{"B", "A", "B"})
	want := "# Environment Variables\n" +
		"# Copy this file to .env and add your actual values\n\n" +
		"A=your_a_here\n" +
		"B=your_b_here\n" +
		"\n# Add this file to your .gitignore!\n"
	assert.Equal(t, want, got)
	assert.Equal(t, got, BuildEnvTemplate([]string{"A", "B"}))
}

func TestSuggestionFor(t *testing.T) {
	assert.Contains(t, SuggestionFor(TypeSecretExposure).SecurityImpact, "CRITICAL")
	assert.Equal(t, SuggestionFor(TypeCodeQuality), SuggestionFor("unknown"))
}
