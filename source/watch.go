package source

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/xiam/guix-crates/internal/ctxlog"
)

// Watch calls fn with the new content of every matching module created or
// written under the root, until ctx is done. fn runs on the watching
// goroutine.
func (d *Dir) Watch(ctx context.Context, fn func(File)) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		if rel != "." && matchesAny(filepath.ToSlash(rel)+"/**", d.ignore) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", d.root, err)
	}

	logger.Debug("watching directory", "root", d.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			rel, err := filepath.Rel(d.root, event.Name)
			if err != nil || !d.Match(rel) {
				continue
			}

			file, err := d.ReadFile(rel)
			if err != nil {
				logger.Warn("failed to read changed file", "path", event.Name, "error", err)
				continue
			}
			fn(file)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
