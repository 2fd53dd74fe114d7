package runner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/mvp-joe/intl-extract/internal/messages"
	"github.com/mvp-joe/intl-extract/internal/watcher"
)

// Watch re-extracts changed sources until ctx is done. onReport receives the
// report of every batch. Removed sources lose their cached results and sidecar.
func (r *Runner) Watch(ctx context.Context, w watcher.FileWatcher, d *Discovery, onReport func(*Report)) error {
	err := w.Start(ctx, func(changed []string) {
		files := r.changedSources(ctx, d, changed)
		if len(files) == 0 {
			return
		}
		report, err := r.Run(ctx, files)
		if report == nil {
			r.logger.Error("watch run failed", "error", err)
			return
		}
		onReport(report)
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return w.Stop()
}

func (r *Runner) changedSources(ctx context.Context, d *Discovery, changed []string) []string {
	var files []string
	for _, path := range changed {
		if !d.Match(path) {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			r.logger.Info("source removed", "file", path)
			r.forget(ctx, path)
			r.removeSidecar(path)
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

func (r *Runner) removeSidecar(source string) {
	opts := r.extractor.Options()
	if opts.MessagesDir == "" {
		return
	}
	path, err := messages.SidecarPath(opts.MessagesDir, opts.WorkingDir, source)
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("failed to remove sidecar", "path", path, "error", err)
	}
}
