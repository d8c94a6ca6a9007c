package engine

import (
	"sort"
	"strings"
)

// ApplyFixes rewrites text line by line. Fixes are visited in descending line
// order so an edit never shifts a fix that has not been applied yet. A fix is
// skipped when its line is out of range, either snippet is empty, the trimmed
// original no longer appears on the line, or the replacement embeds the
// original and is already on the line. Applied fixes are marked in place.
//
// It returns the new text, how many fixes were applied and the sorted,
// de-duplicated environment variables those fixes need.
func ApplyFixes(text string, fixes []Fix) (string, int, []string) {
	if len(fixes) == 0 {
		return text, 0, []string{}
	}

	lines := strings.Split(text, "\n")

	order := make([]int, len(fixes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fixes[order[a]].Line > fixes[order[b]].Line
	})

	applied := 0
	env := make(map[string]struct{})
	for _, i := range order {
		f := &fixes[i]
		ln := f.Line - 1
		if ln < 0 || ln >= len(lines) {
			continue
		}
		original := strings.TrimSpace(f.OriginalCode)
		fixed := strings.TrimSpace(f.FixedCode)
		if original == "" || fixed == "" {
			continue
		}
		current := lines[ln]
		if !strings.Contains(current, original) {
			continue
		}
		// commented-out statements embed their original
		if strings.Contains(fixed, original) && strings.Contains(current, fixed) {
			continue
		}
		lines[ln] = strings.Replace(current, original, fixed, 1)
		applied++
		f.Applied = true
		for _, v := range f.EnvVarsNeeded {
			if v != "" {
				env[v] = struct{}{}
			}
		}
	}

	return strings.Join(lines, "\n"), applied, sortedKeys(env)
}

// EnvVarsFrom collects the sorted set of variables a list of fixes needs.
func EnvVarsFrom(fixes []Fix) []string {
	env := make(map[string]struct{})
	for _, f := range fixes {
		for _, v := range f.EnvVarsNeeded {
			if v != "" {
				env[v] = struct{}{}
			}
		}
	}
	return sortedKeys(env)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
