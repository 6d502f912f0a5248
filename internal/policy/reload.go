package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long the reloader waits after the last write
// before re-reading the policy file.
const reloadDebounce = 500 * time.Millisecond

// Holder keeps the current policy for long-running servers and swaps it
// atomically on reload.
type Holder struct {
	path string
	mu   sync.RWMutex
	cfg  *Config
	hash string
}

// NewHolder loads the policy at path (empty for defaults).
func NewHolder(path string) (*Holder, error) {
	cfg, hash, err := LoadConfigWithHash(path)
	if err != nil {
		return nil, err
	}
	return &Holder{path: path, cfg: cfg, hash: hash}, nil
}

// Current returns the active policy and its hash.
func (h *Holder) Current() (*Config, string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg, h.hash
}

// Path returns the watched policy path.
func (h *Holder) Path() string {
	return h.path
}

// Reload re-reads the policy file. On error the previous policy stays active.
func (h *Holder) Reload() error {
	cfg, hash, err := LoadConfigWithHash(h.path)
	if err != nil {
		return fmt.Errorf("failed to reload policy config: %w", err)
	}
	h.mu.Lock()
	h.cfg = cfg
	h.hash = hash
	h.mu.Unlock()
	return nil
}

// Reloader watches the policy file and triggers Holder.Reload on change.
type Reloader struct {
	watcher *fsnotify.Watcher
	holder  *Holder
	log     *slog.Logger
}

// NewReloader creates a file watcher for the holder's policy path.
// It fails when the path is empty or does not exist.
func NewReloader(holder *Holder, log *slog.Logger) (*Reloader, error) {
	if holder.Path() == "" {
		return nil, fmt.Errorf("no policy file configured")
	}
	if _, err := os.Stat(holder.Path()); err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", holder.Path(), err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(holder.Path()); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", holder.Path(), err)
	}

	if log == nil {
		log = slog.Default()
	}
	return &Reloader{watcher: watcher, holder: holder, log: log}, nil
}

// Run watches for file changes and reloads the policy. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("policy watcher error", "error", err)
		}
	}
}

func (r *Reloader) reload() {
	if err := r.holder.Reload(); err != nil {
		r.log.Warn("policy hot-reload failed", "path", r.holder.Path(), "error", err)
		return
	}
	_, hash := r.holder.Current()
	r.log.Info("policy reloaded", "path", r.holder.Path(), "policy_hash", hash)
}
