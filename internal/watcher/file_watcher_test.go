package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - New creates watcher successfully with valid directories
// - New returns error with invalid directory
// - Single file change fires callback after debounce
// - Rapid changes to several files are batched into one sorted callback
// - Removed files are reported
// - Directory added after start is watched
// - Files inside a directory moved into the tree are reported
// - Accept filters files; SkipDir keeps directories out of the watch
// - Stop() is idempotent, also without Start()
// - Context cancellation stops the event loop

const testDebounce = 100 * time.Millisecond

func jsOnly(path string) bool {
	return strings.HasSuffix(path, ".js")
}

// startWatcher starts a watcher over dir and returns the channel of batches.
func startWatcher(t *testing.T, dir string, opts Options) (FileWatcher, <-chan []string) {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}

	w, err := New([]string{dir}, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	batches := make(chan []string, 10)
	require.NoError(t, w.Start(context.Background(), func(files []string) {
		batches <- files
	}))

	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return w, batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case files := <-batches:
		return files
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
		return nil
	}
}

func assertNoBatch(t *testing.T, batches <-chan []string) {
	t.Helper()
	select {
	case files := <-batches:
		t.Fatalf("unexpected callback with %v", files)
	case <-time.After(4 * testDebounce):
	}
}

func TestNew_Success(t *testing.T) {
	t.Parallel()

	w, err := New([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NotNil(t, w)
	require.NoError(t, w.Stop())
}

func TestNew_InvalidDirectory(t *testing.T) {
	t.Parallel()

	w, err := New([]string{filepath.Join(t.TempDir(), "nonexistent")}, Options{})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir, Options{Accept: jsOnly})

	file := filepath.Join(dir, "app.js")
	require.NoError(t, os.WriteFile(file, []byte("const a = 1;"), 0644))

	assert.Equal(t, []string{file}, waitBatch(t, batches))
}

func TestFileWatcher_BatchesAndSorts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir, Options{Accept: jsOnly, Debounce: 300 * time.Millisecond})

	b := filepath.Join(dir, "b.js")
	a := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(b, []byte("1"), 0644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(a, []byte("1"), 0644))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, os.WriteFile(b, []byte("2"), 0644))

	assert.Equal(t, []string{a, b}, waitBatch(t, batches))
	assertNoBatch(t, batches)
}

func TestFileWatcher_FileRemoved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "gone.js")
	require.NoError(t, os.WriteFile(file, []byte("1"), 0644))

	_, batches := startWatcher(t, dir, Options{Accept: jsOnly})
	require.NoError(t, os.Remove(file))

	assert.Contains(t, waitBatch(t, batches), file)
}

func TestFileWatcher_DirectoryAdded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir, Options{Accept: jsOnly})

	sub := filepath.Join(dir, "components")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher time to pick up the new directory
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "Header.js")
	require.NoError(t, os.WriteFile(file, []byte("1"), 0644))

	assert.Contains(t, waitBatch(t, batches), file)
}

func TestFileWatcher_DirectoryMovedIn(t *testing.T) {
	t.Parallel()

	staging := filepath.Join(t.TempDir(), "feature")
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "nested"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(staging, "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "a.js"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "nested", "b.js"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "notes.md"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "node_modules", "c.js"), []byte("1"), 0644))

	dir := t.TempDir()
	_, batches := startWatcher(t, dir, Options{
		Accept:  jsOnly,
		SkipDir: func(path string) bool { return filepath.Base(path) == "node_modules" },
	})

	moved := filepath.Join(dir, "feature")
	require.NoError(t, os.Rename(staging, moved))

	assert.Equal(t, []string{
		filepath.Join(moved, "a.js"),
		filepath.Join(moved, "nested", "b.js"),
	}, waitBatch(t, batches))
}

func TestFileWatcher_Filtering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ignored := filepath.Join(dir, "node_modules")
	require.NoError(t, os.Mkdir(ignored, 0755))

	_, batches := startWatcher(t, dir, Options{
		Accept:  jsOnly,
		SkipDir: func(path string) bool { return filepath.Base(path) == "node_modules" },
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(ignored, "lib.js"), []byte("x"), 0644))
	assertNoBatch(t, batches)

	file := filepath.Join(dir, "index.js")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Equal(t, []string{file}, waitBatch(t, batches))
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	w, err := New([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	// Never started
	w, err = New([]string{t.TempDir()}, Options{})
	require.NoError(t, err)
	require.NoError(t, w.Stop())
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New([]string{dir}, Options{Accept: jsOnly, Debounce: testDebounce})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 10)
	require.NoError(t, w.Start(ctx, func(files []string) { batches <- files }))

	cancel()
	select {
	case <-w.(*fileWatcher).doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not stop after cancellation")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.js"), []byte("x"), 0644))
	assertNoBatch(t, batches)
}
