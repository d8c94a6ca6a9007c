package analysis

import (
	"path/filepath"
	"strings"
)

// AnalyzableExtensions are the source file types a repository scan reads.
var AnalyzableExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".cpp",
	".c", ".php", ".rb", ".go", ".cs", ".sql", ".html",
}

// Filter decides which paths a repository scan or watcher looks at.
type Filter struct {
	ExcludedFiles      []string
	ExcludedExtensions []string
}

// Analyzable reports whether path should be scanned. Any excluded file entry
// occurring anywhere in the path rules it out, as does an excluded suffix.
func (f Filter) Analyzable(path string) bool {
	path = filepath.ToSlash(path)
	if f.Excluded(path) {
		return false
	}
	for _, ext := range f.ExcludedExtensions {
		if ext != "" && strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, ext := range AnalyzableExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Excluded reports whether path contains any excluded file entry.
func (f Filter) Excluded(path string) bool {
	path = filepath.ToSlash(path)
	for _, ex := range f.ExcludedFiles {
		if ex != "" && strings.Contains(path, ex) {
			return true
		}
	}
	return false
}

// Extension returns the language tag for a path ("app.py" -> "py").
func Extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
