package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchProgram sends the new contents of path after every change, debounced
// by debounce. The directory is watched rather than the file so editors that
// replace the file on save are followed. The channel closes with ctx.
func watchProgram(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger) (<-chan string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	changes := make(chan string, 1)
	fire := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer func() { _ = watcher.Close() }()

		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})

			case <-fire:
				data, err := os.ReadFile(abs)
				if err != nil {
					logger.Warn("failed to read changed program", "file", abs, "error", err)
					continue
				}
				logger.Debug("program changed", "file", abs)
				// Keep only the latest version.
				select {
				case <-changes:
				default:
				}
				changes <- string(data)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
			}
		}
	}()

	return changes, nil
}
