package engine

import "sort"

var severityWeights = map[Severity]int{
	SeverityCritical: 25,
	SeverityHigh:     15,
	SeverityMedium:   8,
	SeverityLow:      3,
}

// Score starts at 100 and subtracts a weight per issue by severity, floored at 0.
// Unknown severities weigh as LOW.
func Score(issues []Issue) int {
	score := 100
	for _, is := range issues {
		w, ok := severityWeights[is.Severity]
		if !ok {
			w = severityWeights[SeverityLow]
		}
		score -= w
	}
	if score < 0 {
		return 0
	}
	return score
}

// RiskLevel derives the reporting label from a score.
func RiskLevel(score int) Severity {
	switch {
	case score < 60:
		return SeverityCritical
	case score < 80:
		return SeverityHigh
	case score < 95:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Categorized buckets issues by concern and severity.
type Categorized map[Concern]map[Severity][]Issue

// Categorize buckets issues by category and severity. Every concern has all
// four severity buckets; issues with an unknown category or severity are
// left out of the buckets but still count toward Score.
func Categorize(issues []Issue) Categorized {
	out := make(Categorized, len(Concerns))
	for _, c := range Concerns {
		buckets := make(map[Severity][]Issue, len(Severities))
		for _, s := range Severities {
			buckets[s] = []Issue{}
		}
		out[c] = buckets
	}
	for _, is := range issues {
		buckets, ok := out[is.Category]
		if !ok {
			continue
		}
		if _, ok := buckets[is.Severity]; !ok {
			continue
		}
		buckets[is.Severity] = append(buckets[is.Severity], is)
	}
	return out
}

// SortBySeverity orders issues by severity, then line, keeping scan order for ties.
func SortBySeverity(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := issues[i].Severity.Rank(), issues[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return issues[i].Line < issues[j].Line
	})
}

// SeverityCounts tallies issues per severity.
func SeverityCounts(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int, len(Severities))
	for _, is := range issues {
		counts[is.Severity]++
	}
	return counts
}
