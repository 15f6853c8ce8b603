package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler processes one newly arrived media file.
type Handler func(ctx context.Context, path string) error

// Watcher monitors a directory and runs a handler for each new media file
// once the file has finished being written.
type Watcher struct {
	dir        string
	extensions map[string]bool
	handler    Handler
	log        *zap.SugaredLogger
	fs         *fsnotify.Watcher

	// polling cadence for the write-completion check
	settle time.Duration
}

func New(dir string, extensions []string, handler Handler, log *zap.SugaredLogger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Watcher{
		dir:        dir,
		extensions: exts,
		handler:    handler,
		log:        log,
		fs:         fs,
		settle:     500 * time.Millisecond,
	}, nil
}

// Start blocks until ctx is cancelled or the watcher fails.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Infow("watching directory", "dir", w.dir, "extensions", keys(w.extensions))
	for {
		select {
		case <-ctx.Done():
			w.log.Infow("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.isMediaFile(event.Name) {
				w.log.Debugw("ignoring non-media file", "path", event.Name)
				continue
			}
			w.log.Infow("new media file detected", "path", event.Name)
			if err := w.waitStable(ctx, event.Name); err != nil {
				w.log.Warnw("file never settled", "path", event.Name, "error", err)
				continue
			}
			if err := w.handler(ctx, event.Name); err != nil {
				w.log.Errorw("processing failed", "path", event.Name, "error", err)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Errorw("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Stop() error { return w.fs.Close() }

func (w *Watcher) isMediaFile(path string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// waitStable polls the file size until two consecutive reads agree, so the
// handler does not run against a half-copied file.
func (w *Watcher) waitStable(ctx context.Context, path string) error {
	var last int64 = -1
	for i := 0; i < 60; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settle):
		}
		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if fi.Size() == last && fi.Size() > 0 {
			return nil
		}
		last = fi.Size()
	}
	return fmt.Errorf("file %s still growing", path)
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
