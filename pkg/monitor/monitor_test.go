package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/gosec-autofix/pkg/analysis"
	"github.com/user/gosec-autofix/pkg/config"
)

const leaky = "password = \"abcdef123456\"\nprint(\"debug\")\n"

func newWatcher(t *testing.T, mode string) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	w, err := New(root, analysis.New(nil, nil), nil, Options{Mode: mode, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	return w, root
}

func writeSource(t *testing.T, root, name, body string) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestActivityLogBounded(t *testing.T) {
	log := NewActivityLog(3)
	for i := 0; i < 5; i++ {
		log.Record(Activity{Kind: KindScan, Message: fmt.Sprint(i)})
	}

	entries := log.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Message)
	assert.Equal(t, "4", entries[2].Message)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestActivityLogConcurrent(t *testing.T) {
	log := NewActivityLog(0)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				log.Record(Activity{Kind: KindScan})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, DefaultActivityLimit, log.Len())
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(t.TempDir(), nil, nil, Options{Mode: "yolo"})
	assert.ErrorIs(t, err, config.ErrInvalidMode)
}

func TestProcessMonitorMode(t *testing.T) {
	w, root := newWatcher(t, config.ModeMonitor)
	path := writeSource(t, root, "app.py", leaky)

	a, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, KindScan, a.Kind)
	assert.Equal(t, "app.py", a.File)
	assert.GreaterOrEqual(t, a.IssuesFound, 2)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, leaky, string(got))
	assert.NoFileExists(t, path+fixesSuffix)
}

func TestProcessSkipsUnchangedContent(t *testing.T) {
	w, root := newWatcher(t, config.ModeMonitor)
	path := writeSource(t, root, "app.py", leaky)

	_, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	a, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, a.ID)
	assert.Equal(t, 1, w.Activity().Len())
}

func TestProcessSuggestModeWritesFixes(t *testing.T) {
	w, root := newWatcher(t, config.ModeSuggest)
	path := writeSource(t, root, "app.py", leaky)

	a, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, KindSuggest, a.Kind)

	data, err := os.ReadFile(path + fixesSuffix)
	require.NoError(t, err)
	var sf suggestionFile
	require.NoError(t, json.Unmarshal(data, &sf))
	assert.Equal(t, "app.py", sf.File)
	assert.Len(t, sf.Fixes, len(sf.Issues))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, leaky, string(got), "suggest mode must not touch the source")
}

func TestProcessAutofixMode(t *testing.T) {
	w, root := newWatcher(t, config.ModeAutofix)
	path := writeSource(t, root, "app.py", leaky)
	require.NoError(t, os.WriteFile(filepath.Join(root, envExampleName), []byte("EXISTING=x\n"), 0644))

	a, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, KindAutofix, a.Kind)
	assert.GreaterOrEqual(t, a.FixesApplied, 2)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "password = os.getenv('PASSWORD')")
	assert.Contains(t, string(got), `# print("debug")`)

	env, err := os.ReadFile(filepath.Join(root, envExampleName))
	require.NoError(t, err)
	assert.Contains(t, string(env), "PASSWORD=your_password_here")
	assert.Contains(t, string(env), "EXISTING=your_existing_here")

	// our own write must not be fixed twice
	again, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, again.ID)
}

func TestProcessCleanFile(t *testing.T) {
	w, root := newWatcher(t, config.ModeAutofix)
	path := writeSource(t, root, "ok.go", "package ok\n")

	a, err := w.Process(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, a.IssuesFound)
	assert.Equal(t, "no issues found", a.Message)
	assert.NoFileExists(t, filepath.Join(root, envExampleName))
}

func TestRunPicksUpWrites(t *testing.T) {
	w, root := newWatcher(t, config.ModeMonitor)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register the root
	time.Sleep(100 * time.Millisecond)
	writeSource(t, root, "notes.txt", "password = \"abcdef123456\"\n")
	writeSource(t, root, "app.py", leaky)

	assert.Eventually(t, func() bool { return w.Activity().Len() > 0 }, 5*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	for _, a := range w.Activity().Entries() {
		assert.Equal(t, "app.py", a.File)
	}
}
