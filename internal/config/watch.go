package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 250 * time.Millisecond

// Watcher holds the current config and reloads it when the file changes
type Watcher struct {
	path     string
	envFiles []string
	log      zerolog.Logger

	mu  sync.RWMutex
	cfg Config
}

// NewWatcher wraps an already loaded config
func NewWatcher(path string, cfg Config, log zerolog.Logger, envFiles ...string) *Watcher {
	return &Watcher{
		path:     path,
		envFiles: envFiles,
		log:      log.With().Str("component", "config").Logger(),
		cfg:      cfg,
	}
}

// Current returns the last valid config
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Watch blocks until ctx is done, reloading the file after writes settle.
// A reload that fails to parse or validate is logged and dropped; the
// previous config stays current. onChange runs after each accepted reload.
func (w *Watcher) Watch(ctx context.Context, onChange func(Config)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	// Editors often replace the file, so watch the directory.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	name := filepath.Clean(w.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("config watch error")
		case <-reload:
			cfg, err := Load(w.path, w.envFiles...)
			if err != nil {
				w.log.Warn().Err(err).Str("path", w.path).Msg("config reload rejected")
				continue
			}
			w.mu.Lock()
			w.cfg = cfg
			w.mu.Unlock()
			w.log.Info().Str("path", w.path).Msg("config reloaded")
			if onChange != nil {
				onChange(cfg)
			}
		}
	}
}
