package monitoring

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact logs a warning whenever the model file changes on disk. The
// loaded model is never swapped; a restart is needed to pick up a new
// artifact. The directory is watched rather than the file so that atomic
// rename-based replacements are seen too. onChange may be nil.
func WatchArtifact(ctx context.Context, path string, logger *zap.Logger, onChange func(fsnotify.Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				logger.Warn("model artifact changed on disk; restart to serve it",
					zap.String("path", abs), zap.String("op", ev.Op.String()))
				if onChange != nil {
					onChange(ev)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("model watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
