package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultBaselinePath is where baselines are written when no path is given.
const DefaultBaselinePath = ".gosec-baseline.json"

// ErrNoSnapshot is returned when a baseline file does not exist.
var ErrNoSnapshot = errors.New("no baseline snapshot found")

// Entry is an issue tied to the file it was found in.
type Entry struct {
	File  string `json:"file"`
	Issue Issue  `json:"issue"`
}

// key identifies an issue independent of its position, so moving code up or
// down does not turn an old issue into a new one.
func (e Entry) key() string {
	return e.File + "\x00" + e.Issue.Subcategory + "\x00" + e.Issue.Message + "\x00" + e.Issue.Match
}

// Baseline is a de-duplicated set of issues across files.
type Baseline struct {
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
	mu        sync.RWMutex
}

// NewBaseline creates an empty baseline.
func NewBaseline() *Baseline {
	return &Baseline{CreatedAt: time.Now().UTC(), Entries: make([]Entry, 0)}
}

// Add ingests the issues of one file. An issue already present under the same
// key is overwritten with the latest copy.
func (b *Baseline) Add(file string, issues []Issue) {
	b.mu.Lock()
	defer b.mu.Unlock()

	index := make(map[string]int, len(b.Entries))
	for i, e := range b.Entries {
		index[e.key()] = i
	}
	for _, is := range issues {
		e := Entry{File: file, Issue: is}
		if i, ok := index[e.key()]; ok {
			b.Entries[i] = e
			continue
		}
		index[e.key()] = len(b.Entries)
		b.Entries = append(b.Entries, e)
	}
}

// Len returns the number of entries.
func (b *Baseline) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.Entries)
}

// Save writes the baseline as indented JSON.
func (b *Baseline) Save(path string) error {
	b.mu.RLock()
	data, err := json.MarshalIndent(b, "", "  ")
	b.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	return nil
}

// LoadBaseline reads a baseline written by Save.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSnapshot)
	}
	if err != nil {
		return nil, err
	}
	b := NewBaseline()
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("decode baseline %s: %w", path, err)
	}
	return b, nil
}

// Diff is the result of comparing a current scan to a baseline.
type Diff struct {
	New       []Entry `json:"new"`
	Fixed     []Entry `json:"fixed"`
	Unchanged []Entry `json:"unchanged"`
}

// Compare classifies every current entry as New or Unchanged relative to
// baseline, and every baseline entry missing from b as Fixed.
func (b *Baseline) Compare(baseline *Baseline) Diff {
	b.mu.RLock()
	defer b.mu.RUnlock()
	baseline.mu.RLock()
	defer baseline.mu.RUnlock()

	diff := Diff{New: []Entry{}, Fixed: []Entry{}, Unchanged: []Entry{}}

	old := make(map[string]struct{}, len(baseline.Entries))
	for _, e := range baseline.Entries {
		old[e.key()] = struct{}{}
	}
	cur := make(map[string]struct{}, len(b.Entries))
	for _, e := range b.Entries {
		cur[e.key()] = struct{}{}
		if _, ok := old[e.key()]; ok {
			diff.Unchanged = append(diff.Unchanged, e)
		} else {
			diff.New = append(diff.New, e)
		}
	}
	for _, e := range baseline.Entries {
		if _, ok := cur[e.key()]; !ok {
			diff.Fixed = append(diff.Fixed, e)
		}
	}
	return diff
}

// Report renders the diff for a terminal. At most limit unchanged entries are listed.
func (d Diff) Report(limit int) string {
	var sb strings.Builder

	section := func(title, mark string, entries []Entry, max int) {
		sb.WriteString(fmt.Sprintf("%s: %d\n", title, len(entries)))
		sorted := append([]Entry(nil), entries...)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Issue.Severity.Rank() != sorted[j].Issue.Severity.Rank() {
				return sorted[i].Issue.Severity.Rank() < sorted[j].Issue.Severity.Rank()
			}
			return sorted[i].File < sorted[j].File
		})
		for i, e := range sorted {
			if max > 0 && i >= max {
				sb.WriteString(fmt.Sprintf("  ... and %d more.\n", len(sorted)-max))
				break
			}
			sb.WriteString(fmt.Sprintf("  [%s] [%s] %s:%d %s - %s\n", mark, e.Issue.Severity, e.File, e.Issue.Line, e.Issue.Message, e.Issue.Match))
		}
		sb.WriteString("\n")
	}

	section("NEW ISSUES", "+", d.New, 0)
	section("FIXED ISSUES", "-", d.Fixed, 0)
	section("UNCHANGED ISSUES", "=", d.Unchanged, limit)
	return sb.String()
}
