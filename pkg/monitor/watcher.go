package monitor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/config"
	"github.com/user/gosec-autofix/pkg/engine"
	"github.com/user/gosec-autofix/pkg/fixer"
	"github.com/user/gosec-autofix/pkg/logging"
	"github.com/user/gosec-autofix/pkg/metrics"
)

const (
	defaultDebounce = 200 * time.Millisecond
	fixesSuffix     = ".fixes.json"
	envExampleName  = ".env.example"
)

// Options configures a Watcher.
type Options struct {
	Mode     string
	Filter   analysis.Filter
	Debounce time.Duration
}

// Watcher rescans source files under a directory as they change and reacts
// according to the agent mode.
type Watcher struct {
	root     string
	mode     string
	filter   analysis.Filter
	debounce time.Duration
	analyzer *analysis.Analyzer
	fixes    *fixer.Service
	activity *ActivityLog

	mu   sync.Mutex
	seen map[string]uint64
}

// New creates a watcher. A nil activity log gets a default one.
func New(root string, a *analysis.Analyzer, activity *ActivityLog, opts Options) (*Watcher, error) {
	switch opts.Mode {
	case "":
		opts.Mode = config.ModeMonitor
	case config.ModeMonitor, config.ModeSuggest, config.ModeAutofix:
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidMode, opts.Mode)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if a == nil {
		a = analysis.New(nil, nil)
	}
	if activity == nil {
		activity = NewActivityLog(0)
	}
	fixes := a.Fixes()
	if fixes == nil {
		fixes = fixer.NewService(nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     abs,
		mode:     opts.Mode,
		filter:   opts.Filter,
		debounce: opts.Debounce,
		analyzer: a,
		fixes:    fixes,
		activity: activity,
		seen:     make(map[string]uint64),
	}, nil
}

func (w *Watcher) Mode() string { return w.mode }

func (w *Watcher) Activity() *ActivityLog { return w.activity }

// Run watches until ctx is cancelled. Changes are batched over the debounce
// window and each changed file is processed once per batch.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}
	logging.Infof("watching %s in %s mode", w.root, w.mode)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for path := range pending {
			if _, err := w.Process(ctx, path); err != nil {
				logging.Warnf("process %s: %v", path, err)
			}
		}
		pending = make(map[string]struct{})
		timer, timerC = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fsw, event.Name); err != nil {
						logging.Warnf("watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.filter.Analyzable(w.rel(event.Name)) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			flush()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && w.filter.Excluded(w.rel(path)) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) rel(path string) string {
	if r, err := filepath.Rel(w.root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}

// Process scans one file and acts on it according to the mode. Unchanged
// content since the last call is skipped and yields a zero Activity.
func (w *Watcher) Process(ctx context.Context, path string) (Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Activity{}, err
	}
	code := string(data)
	if !w.changed(path, code) {
		return Activity{}, nil
	}

	rel := w.rel(path)
	ext := analysis.Extension(path)
	issues := w.analyzer.Scan(code, ext)
	entry := Activity{Kind: KindScan, File: rel, Mode: w.mode, IssuesFound: len(issues)}

	if len(issues) == 0 {
		entry.Message = "no issues found"
		return w.activity.Record(entry), nil
	}

	counts := engine.SeverityCounts(issues)
	entry.Message = fmt.Sprintf("%d issues (%d critical, %d high)", len(issues),
		counts[engine.SeverityCritical], counts[engine.SeverityHigh])
	logging.With("file", rel, "mode", w.mode).Infof("found %d issues", len(issues))

	switch w.mode {
	case config.ModeSuggest:
		fixes := w.fixes.GenerateFixes(ctx, issues, code, ext)
		if err := writeSuggestions(path, issues, fixes); err != nil {
			return w.recordError(rel, err), err
		}
		entry.Kind = KindSuggest
		entry.Message = fmt.Sprintf("%d fixes written to %s", len(fixes), filepath.Base(path)+fixesSuffix)

	case config.ModeAutofix:
		fixes := w.fixes.GenerateFixes(ctx, issues, code, ext)
		fixed, applied, envVars := engine.ApplyFixes(code, fixes)
		entry.Kind = KindAutofix
		entry.FixesApplied = applied
		entry.Message = fmt.Sprintf("applied %d of %d fixes", applied, len(fixes))
		if applied > 0 {
			if err := writeKeepingMode(path, fixed); err != nil {
				return w.recordError(rel, err), err
			}
			w.changed(path, fixed)
			metrics.FixesApplied.Add(float64(applied))
		}
		if len(envVars) > 0 {
			if err := mergeEnvExample(filepath.Join(w.root, envExampleName), envVars); err != nil {
				return w.recordError(rel, err), err
			}
		}
	}

	return w.activity.Record(entry), nil
}

func (w *Watcher) recordError(file string, err error) Activity {
	return w.activity.Record(Activity{Kind: KindError, File: file, Mode: w.mode, Message: err.Error()})
}

// changed records the content hash for path and reports whether it differs
// from the previous one.
func (w *Watcher) changed(path, code string) bool {
	h := fnv.New64a()
	h.Write([]byte(code))
	sum := h.Sum64()

	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.seen[path]; ok && prev == sum {
		return false
	}
	w.seen[path] = sum
	return true
}

type suggestionFile struct {
	File      string         `json:"file"`
	Generated time.Time      `json:"generated_at"`
	Issues    []engine.Issue `json:"issues"`
	Fixes     []engine.Fix   `json:"fixes"`
}

func writeSuggestions(path string, issues []engine.Issue, fixes []engine.Fix) error {
	data, err := json.MarshalIndent(suggestionFile{
		File:      filepath.Base(path),
		Generated: time.Now().UTC(),
		Issues:    issues,
		Fixes:     fixes,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path+fixesSuffix, data, 0644)
}

func writeKeepingMode(path, content string) error {
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(content), perm)
}

// mergeEnvExample rewrites path so it lists every variable already in it
// plus names.
func mergeEnvExample(path string, names []string) error {
	all := append([]string(nil), names...)
	if f, err := os.Open(path); err == nil {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if name, _, ok := strings.Cut(line, "="); ok {
				all = append(all, name)
			}
		}
		f.Close()
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(engine.BuildEnvTemplate(all)), 0644)
}
