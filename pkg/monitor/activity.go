package monitor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultActivityLimit is how many entries an ActivityLog keeps.
const DefaultActivityLimit = 100

// Activity kinds.
const (
	KindScan      = "scan"
	KindSuggest   = "suggest"
	KindAutofix   = "autofix"
	KindError     = "error"
	KindAnalyze   = "analyze"
	KindApplyFix  = "apply_fixes"
	KindGenerated = "generate_fixes"
)

// Activity is one recorded action.
type Activity struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         string    `json:"type"`
	File         string    `json:"file,omitempty"`
	Mode         string    `json:"mode,omitempty"`
	Message      string    `json:"message"`
	IssuesFound  int       `json:"issues_found"`
	FixesApplied int       `json:"fixes_applied"`
}

// ActivityLog is a bounded, concurrency-safe log of recent actions. The
// oldest entries are dropped once the limit is reached.
type ActivityLog struct {
	mu      sync.Mutex
	limit   int
	entries []Activity
}

func NewActivityLog(limit int) *ActivityLog {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &ActivityLog{limit: limit}
}

// Record stamps a and appends it, returning the stored entry.
func (l *ActivityLog) Record(a Activity) Activity {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, a)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append([]Activity(nil), l.entries[over:]...)
	}
	return a
}

// Entries returns a copy of the log, oldest first.
func (l *ActivityLog) Entries() []Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Activity(nil), l.entries...)
}

func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
