// Package watcher turns filesystem events into debounced batches of changed
// source files.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a watcher. All fields are optional.
type Options struct {
	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration
	// Accept filters file events. Nil accepts every file.
	Accept func(path string) bool
	// SkipDir excludes a directory and its subtree from watching.
	SkipDir func(path string) bool
	Logger  *slog.Logger
}

// fileWatcher implements FileWatcher on top of fsnotify.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	opts     Options
	logger   *slog.Logger
	callback func(files []string)
	cancel   context.CancelFunc

	pending   map[string]bool // changed files since the last batch
	pendingMu sync.Mutex

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{} // closed when the event loop has finished
}

// New creates a watcher over dirs and every directory below them.
func New(dirs []string, opts Options) (FileWatcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher: w,
		opts:    opts,
		logger:  opts.Logger,
		pending: make(map[string]bool),
		doneCh:  make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := fw.addTree(dir, nil); err != nil {
			w.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Start begins delivering batches to callback.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}
	fw.callback = callback

	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.loop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) loop(ctx context.Context) {
	defer close(fw.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			fw.stopTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					fw.watchNewDir(event.Name, flushCh)
					continue
				}
			}

			if !fw.accept(event) {
				continue
			}
			fw.enqueue(event.Name)
			fw.resetTimer(flushCh)

		case <-flushCh:
			fw.flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "error", err)
		}
	}
}

// flush delivers the pending batch, sorted.
func (fw *fileWatcher) flush() {
	fw.pendingMu.Lock()
	if len(fw.pending) == 0 {
		fw.pendingMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for file := range fw.pending {
		files = append(files, file)
	}
	fw.pending = make(map[string]bool)
	fw.pendingMu.Unlock()

	sort.Strings(files)
	fw.callback(files)
}

func (fw *fileWatcher) resetTimer(flushCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.opts.Debounce, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
		fw.timer = nil
	}
}

// accept keeps writes, creations, removals and renames of accepted files.
func (fw *fileWatcher) accept(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return fw.opts.Accept == nil || fw.opts.Accept(event.Name)
}

// watchNewDir watches a directory that appeared under a watched one. Files
// already inside it, as after a move or a recursive copy, produce no events
// of their own and are queued directly.
func (fw *fileWatcher) watchNewDir(dir string, flushCh chan struct{}) {
	if fw.opts.SkipDir != nil && fw.opts.SkipDir(dir) {
		return
	}

	queued := false
	err := fw.addTree(dir, func(path string) {
		fw.enqueue(path)
		queued = true
	})
	if err != nil {
		fw.logger.Warn("failed to watch new directory", "dir", dir, "error", err)
	}
	if queued {
		fw.resetTimer(flushCh)
	}
}

func (fw *fileWatcher) enqueue(path string) {
	fw.pendingMu.Lock()
	fw.pending[path] = true
	fw.pendingMu.Unlock()
}

// addTree watches root and every non-skipped directory below it. When found
// is non-nil it receives every accepted file in the tree.
func (fw *fileWatcher) addTree(root string, found func(path string)) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			fw.logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		}
		if !entry.IsDir() {
			if found != nil && (fw.opts.Accept == nil || fw.opts.Accept(path)) {
				found(path)
			}
			return nil
		}
		if path != root && fw.opts.SkipDir != nil && fw.opts.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
