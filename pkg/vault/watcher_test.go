package vault

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *changeRecorder) record(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *changeRecorder) forPath(path string) []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Change
	for _, c := range r.changes {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func newTestWatcher(t *testing.T, root string, rec *changeRecorder) *Watcher {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{
		Root:               root,
		StabilityThreshold: 20 * time.Millisecond,
		OnChange:           rec.record,
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestNewWatcher_RequiresRoot(t *testing.T) {
	_, err := NewWatcher(WatcherConfig{})
	assert.Error(t, err)
}

func TestWatcher_ReportsCreatedNote(t *testing.T) {
	root := t.TempDir()
	rec := &changeRecorder{}
	newTestWatcher(t, root, rec)

	note := filepath.Join(root, "New.md")
	require.NoError(t, os.WriteFile(note, []byte("hello"), 0644))

	assert.Eventually(t, func() bool {
		return len(rec.forPath(note)) > 0
	}, 2*time.Second, 10*time.Millisecond)

	changes := rec.forPath(note)
	require.NotEmpty(t, changes)
	assert.Equal(t, ChangeAdd, changes[0].Type)
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	root := t.TempDir()
	note := filepath.Join(root, "Busy.md")
	require.NoError(t, os.WriteFile(note, []byte("v0"), 0644))

	rec := &changeRecorder{}
	newTestWatcher(t, root, rec)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(note, []byte("v"), 0644))
	}

	assert.Eventually(t, func() bool {
		return len(rec.forPath(note)) > 0
	}, 2*time.Second, 10*time.Millisecond)

	// the burst collapses into far fewer callbacks than writes
	time.Sleep(100 * time.Millisecond)
	assert.Less(t, len(rec.forPath(note)), 5)
}

func TestWatcher_ReportsDeletedNote(t *testing.T) {
	root := t.TempDir()
	note := filepath.Join(root, "Doomed.md")
	require.NoError(t, os.WriteFile(note, []byte("x"), 0644))

	rec := &changeRecorder{}
	newTestWatcher(t, root, rec)

	require.NoError(t, os.Remove(note))

	assert.Eventually(t, func() bool {
		for _, c := range rec.forPath(note) {
			if c.Type == ChangeDelete {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	hidden := filepath.Join(root, ".obsidian")
	require.NoError(t, os.MkdirAll(hidden, 0755))

	rec := &changeRecorder{}
	newTestWatcher(t, root, rec)

	hiddenFile := filepath.Join(hidden, "workspace.json")
	require.NoError(t, os.WriteFile(hiddenFile, []byte("{}"), 0644))

	visible := filepath.Join(root, "Visible.md")
	require.NoError(t, os.WriteFile(visible, []byte("x"), 0644))

	assert.Eventually(t, func() bool {
		return len(rec.forPath(visible)) > 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Empty(t, rec.forPath(hiddenFile))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	root := t.TempDir()
	rec := &changeRecorder{}
	w := newTestWatcher(t, root, rec)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
