package engine

import (
	"sort"
	"strings"
)

// BuildEnvTemplate renders a .env.example body for the given variable names.
// No names means no template is needed and yields "".
func BuildEnvTemplate(names []string) string {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	if len(set) == 0 {
		return ""
	}
	sorted := make([]string, 0, len(set))
	for n := range set {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var sb strings.Builder
	sb.WriteString("# Environment Variables\n")
	sb.WriteString("# Copy this file to .env and add your actual values\n\n")
	for _, n := range sorted {
		sb.WriteString(n + "=your_" + strings.ToLower(n) + "_here\n")
	}
	sb.WriteString("\n# Add this file to your .gitignore!\n")
	return sb.String()
}
