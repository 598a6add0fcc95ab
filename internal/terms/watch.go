package terms

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 400 * time.Millisecond

// Watch reloads the provider whenever its terms file changes, until ctx is
// cancelled. Editors often emit several write events per save, so reloads
// are debounced. Returns immediately when no file is configured.
func (p *Provider) Watch(ctx context.Context, logger *zap.Logger) error {
	if p.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: editors that replace the file on
	// save (rename + create) would otherwise drop the watch.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		var mu sync.Mutex
		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(p.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(reloadDebounce, func() {
					if err := p.Reload(); err != nil {
						if logger != nil {
							logger.Warn("terms reload failed, keeping previous lists", zap.Error(err))
						}
						return
					}
					if logger != nil {
						logger.Info("terms reloaded", zap.String("path", p.path))
					}
				})
				mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger.Warn("terms watcher error", zap.Error(err))
				}
			}
		}
	}()
	return nil
}
