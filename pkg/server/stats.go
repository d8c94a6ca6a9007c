package server

import (
	"sync"
	"time"
)

// Stats holds process-lifetime counters for /api/stats. It is created at
// start-up and shared by the handlers.
type Stats struct {
	mu             sync.Mutex
	startedAt      time.Time
	filesAnalyzed  int
	issuesFound    int
	fixesGenerated int
	fixesApplied   int
}

func NewStats() *Stats {
	return &Stats{startedAt: time.Now().UTC()}
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	StartedAt      time.Time `json:"started_at"`
	UptimeSeconds  int64     `json:"uptime_seconds"`
	FilesAnalyzed  int       `json:"files_analyzed"`
	IssuesFound    int       `json:"issues_found"`
	FixesGenerated int       `json:"fixes_generated"`
	FixesApplied   int       `json:"fixes_applied"`
}

func (s *Stats) recordAnalysis(issues, fixes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesAnalyzed++
	s.issuesFound += issues
	s.fixesGenerated += fixes
}

func (s *Stats) recordGenerated(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixesGenerated += n
}

func (s *Stats) recordApplied(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixesApplied += n
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{
		StartedAt:      s.startedAt,
		UptimeSeconds:  int64(time.Since(s.startedAt).Seconds()),
		FilesAnalyzed:  s.filesAnalyzed,
		IssuesFound:    s.issuesFound,
		FixesGenerated: s.fixesGenerated,
		FixesApplied:   s.fixesApplied,
	}
}
