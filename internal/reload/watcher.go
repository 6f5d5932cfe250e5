// Package reload re-applies configuration while the application runs, on
// SIGHUP or when the configuration files change on disk.
package reload

import (
	"context"
	"os"
	"time"
)

const defaultPollInterval = 5 * time.Second

// Event reports that a watched file changed.
type Event struct {
	Path string
}

type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}

// Watcher polls a set of files, typically the configuration and its .env.
// A file that appears, disappears, grows or is touched yields an Event.
type Watcher struct {
	paths    []string
	interval time.Duration
}

// NewWatcher creates a watcher for paths. A zero interval means five
// seconds.
func NewWatcher(interval time.Duration, paths ...string) *Watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Watcher{paths: paths, interval: interval}
}

// Watch polls until ctx is done, then closes the returned channel. Changes
// that arrive while a previous event is still unread are coalesced.
func (w *Watcher) Watch(ctx context.Context) <-chan Event {
	events := make(chan Event, 1)

	last := make([]fileState, len(w.paths))
	for i, p := range w.paths {
		last[i] = stat(p)
	}

	go func() {
		defer close(events)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			for i, p := range w.paths {
				cur := stat(p)
				if cur == last[i] {
					continue
				}
				last[i] = cur
				select {
				case events <- Event{Path: p}:
				default:
				}
			}
		}
	}()
	return events
}
