package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/user/gosec-autofix/pkg/logging"
)

const maxMatchLen = 100

// Scanner applies a catalog to source text.
type Scanner struct {
	catalog *Catalog
}

// NewScanner creates a scanner over the given catalog, or the built-in one if nil.
func NewScanner(c *Catalog) *Scanner {
	if c == nil {
		c = DefaultCatalog()
	}
	return &Scanner{catalog: c}
}

// Catalog returns the catalog the scanner evaluates.
func (s *Scanner) Catalog() *Catalog {
	return s.catalog
}

// Scan is shorthand for scanning with the built-in catalog.
func Scan(text, language string) []Issue {
	return NewScanner(nil).Scan(text, language)
}

// Scan returns one Issue per pattern match, ordered by concern, group,
// pattern and match position. Callers needing line order must sort.
func (s *Scanner) Scan(text, language string) []Issue {
	if text == "" {
		return nil
	}
	idx := newLineIndex(text)

	var issues []Issue
	for _, concern := range Concerns {
		for _, g := range s.catalog.ApplicableGroups(concern, language) {
			for _, pat := range g.Patterns {
				re, err := pat.Compiled()
				if err != nil {
					logging.Debugf("skipping pattern %q in %s/%s: %v", pat.Label, concern, g.Name, err)
					continue
				}
				for _, m := range re.FindAllStringIndex(text, -1) {
					line, col := idx.position(m[0])
					issues = append(issues, Issue{
						Type:         concern.IssueType(),
						Category:     concern,
						Subcategory:  g.Name,
						Line:         line,
						Column:       col,
						Severity:     pat.Severity,
						Message:      pat.Label,
						Match:        matchText(concern, text[m[0]:m[1]]),
						FixAvailable: true,
						Confidence:   confidenceFor(pat.Severity),
					})
				}
			}
		}
	}
	return issues
}

func confidenceFor(s Severity) string {
	if s == SeverityCritical || s == SeverityHigh {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

// matchText keeps secrets verbatim and trims surrounding whitespace from
// everything else, then truncates to maxMatchLen characters.
func matchText(concern Concern, raw string) string {
	if concern != ConcernSecurity {
		raw = strings.TrimSpace(raw)
	}
	return Truncate(raw, maxMatchLen)
}

// Truncate shortens s to n characters, appending "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

// lineIndex maps byte offsets to 1-based lines and 0-based character columns.
type lineIndex struct {
	text     string
	newlines []int
}

func newLineIndex(text string) *lineIndex {
	var nl []int
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			nl = append(nl, i)
		}
	}
	return &lineIndex{text: text, newlines: nl}
}

func (li *lineIndex) position(offset int) (line, column int) {
	// number of newlines strictly before offset
	n := sort.SearchInts(li.newlines, offset)
	lineStart := 0
	if n > 0 {
		lineStart = li.newlines[n-1] + 1
	}
	return n + 1, utf8.RuneCountInString(li.text[lineStart:offset])
}
