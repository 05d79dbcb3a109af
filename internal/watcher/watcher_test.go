package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnFileEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, filepath.Base(e.Path))
	}
	return out
}

func startWatcher(t *testing.T, dir string, opts Options) *recorder {
	t.Helper()

	w, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(dir))

	rec := &recorder{}
	w.Subscribe(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return rec
}

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "progress.md")
	require.NoError(t, os.WriteFile(target, []byte("start"), 0644))

	rec := startWatcher(t, dir, Options{Debounce: 100 * time.Millisecond})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(target, []byte(strings.Repeat("x", i+1)), 0644))
	}

	require.Eventually(t, func() bool { return len(rec.paths()) > 0 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, []string{"progress.md"}, rec.paths())
}

func TestWatcherMatchFilter(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, Options{
		Debounce: 20 * time.Millisecond,
		Match:    func(p string) bool { return strings.HasSuffix(p, ".md") },
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plan.md"), []byte("b"), 0644))

	require.Eventually(t, func() bool { return len(rec.paths()) > 0 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"plan.md"}, rec.paths())
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := startWatcher(t, dir, Options{Debounce: 20 * time.Millisecond})

	sub := filepath.Join(dir, "memory-bank")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the loop a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "progress.md"), []byte("x"), 0644))

	assert.Eventually(t, func() bool {
		for _, p := range rec.paths() {
			if p == "progress.md" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRunTwice(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, w.Run(context.Background()), ErrRunning)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.NoError(t, w.Close())
}

func TestAddRootMissing(t *testing.T) {
	w, err := New(Options{})
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.AddRoot(filepath.Join(t.TempDir(), "missing")))
}

func TestIgnored(t *testing.T) {
	assert.True(t, Ignored("/p/.git"))
	assert.True(t, Ignored("/p/memory-bank/.progress.md.swp"))
	assert.True(t, Ignored("/p/memory-bank/progress.md~"))
	assert.False(t, Ignored("/p/memory-bank/progress.md"))
	assert.False(t, Ignored("/p/.cursor"))
}

func TestCacheInvalidatesOnEvent(t *testing.T) {
	c := NewCache[int]()
	c.Set("/p/a.md", 1)
	c.Set("/p/b.md", 2)

	v, ok := c.Get("/p/a.md")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.OnFileEvent(Event{Op: OpWrite, Path: "/p/a.md"})
	_, ok = c.Get("/p/a.md")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "WRITE", OpWrite.String())
	assert.Equal(t, "UNKNOWN", Op(42).String())
}
