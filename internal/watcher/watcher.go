// Package watcher monitors the content directory and reloads the catalog
// when review files change.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/codigovinario/vinario/internal/catalog"
)

// DebounceDelay is how long the watcher waits for a burst of events to
// settle before reloading.
const DebounceDelay = 500 * time.Millisecond

// Watch calls reload once per burst of changes to content files in dir. It
// blocks until ctx is done. Reload errors are logged and watching continues.
func Watch(ctx context.Context, dir string, exts []string, reload func() error, logger *zap.Logger) error {
	return watch(ctx, dir, exts, DebounceDelay, reload, logger)
}

func watch(ctx context.Context, dir string, exts []string, delay time.Duration, reload func() error, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching content", zap.String("dir", dir), zap.Strings("extensions", exts))

	// Debounce: collect changed files over a window before reloading
	var (
		mu       sync.Mutex
		reloadMu sync.Mutex
		pending  = make(map[string]bool)
		timer    *time.Timer
	)

	flush := func() {
		mu.Lock()
		names := make([]string, 0, len(pending))
		for p := range pending {
			names = append(names, relativePath(p, dir))
		}
		pending = make(map[string]bool)
		mu.Unlock()

		if len(names) == 0 {
			return
		}
		sort.Strings(names)

		reloadMu.Lock()
		defer reloadMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		logger.Info("content changed, reloading", zap.Strings("files", names))
		if err := reload(); err != nil {
			logger.Error("reload failed", zap.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isContentFile(event.Name, exts) {
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			logger.Debug("content event", zap.String("file", relativePath(event.Name, dir)), zap.String("op", event.Op.String()))

			mu.Lock()
			pending[event.Name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(delay, flush)
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}

// isContentFile reports whether name is a file the catalog loader would
// list. Editors' swap and backup files fail the dot-prefix or extension check.
func isContentFile(name string, exts []string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := catalog.SlugFor(base, exts)
	return ok
}

func relativePath(filePath, dir string) string {
	rel, err := filepath.Rel(dir, filePath)
	if err != nil {
		return filePath
	}
	return filepath.ToSlash(rel)
}
