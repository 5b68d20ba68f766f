package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/projecteru2/core/log"
)

// WatchGeo reloads the geo file whenever it changes and hands the result to
// apply. It returns once ctx is done. The parent directory is watched so
// editors that replace the file by rename are seen too.
func WatchGeo(ctx context.Context, path string, apply func(*Geo)) error {
	logger := log.WithFunc("config.WatchGeo")
	if path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			geo, err := LoadGeo(abs)
			if err != nil {
				logger.Warnf(ctx, "keep previous geo: %v", err)
				continue
			}
			logger.Infof(ctx, "geo file reloaded, %d core switches", len(geo.CoreSwitches))
			apply(geo)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf(ctx, "watch %s: %v", abs, err)
		}
	}
}
