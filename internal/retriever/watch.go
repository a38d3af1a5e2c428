package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDebounce is how long Watch waits after the last file event before
// reloading.
const ReloadDebounce = 300 * time.Millisecond

// Holder publishes the current retriever set. Readers always observe a
// complete set; a failed reload leaves the previous set in place.
type Holder struct {
	current atomic.Pointer[Set]
}

// NewHolder returns a holder publishing set.
func NewHolder(set *Set) *Holder {
	h := &Holder{}
	h.current.Store(set)
	return h
}

// Set returns the current retriever set.
func (h *Holder) Set() *Set { return h.current.Load() }

// Reload loads both directories and swaps in the new set on success.
func (h *Holder) Reload(retrieversDir, templatesDir string) (*Set, error) {
	set, err := Load(retrieversDir, templatesDir)
	if err != nil {
		return nil, err
	}
	h.current.Store(set)
	return set, nil
}

// Watch reloads the set whenever a TOML file in either directory changes.
// onReload, if non-nil, is called after every reload attempt. Watch blocks
// until ctx is cancelled.
func (h *Holder) Watch(ctx context.Context, retrieversDir, templatesDir string, onReload func(*Set, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range []string{retrieversDir, templatesDir} {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".toml" {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Debug("config change", "file", event.Name, "op", event.Op.String())
				pending = time.After(ReloadDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-pending:
			pending = nil
			set, err := h.Reload(retrieversDir, templatesDir)
			if err != nil {
				slog.Error("reload failed, keeping previous retrievers", "error", err)
			} else {
				slog.Info("reloaded retrievers", "count", set.Len())
			}
			if onReload != nil {
				onReload(h.Set(), err)
			}
		}
	}
}
