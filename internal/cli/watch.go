package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long a file must be quiet before a rebuild.
const watchDebounce = 200 * time.Millisecond

// watchFile calls fn each time path changes, until ctx is done. The parent
// directory is watched so editors that save by renaming are seen too.
// Bursts of events within debounce collapse into one call.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *log.Logger, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	var (
		pending bool
		last    time.Time
	)
	ticker := time.NewTicker(debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending, last = true, time.Now()
			}

		case <-ticker.C:
			if pending && time.Since(last) >= debounce {
				pending = false
				fn()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
