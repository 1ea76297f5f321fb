package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounce coalesces the bursts of write events editors and atomic
// renames produce for a single save.
const debounce = 500 * time.Millisecond

// Watcher reloads the config file on change and hands the parsed result
// to a callback. Reload failures are logged and the previous config
// stays in effect.
type Watcher struct {
	loader   *Loader
	onReload func(*Config)
	logger   zerolog.Logger
}

// NewWatcher creates a config file watcher.
func NewWatcher(loader *Loader, onReload func(*Config), logger zerolog.Logger) *Watcher {
	return &Watcher{
		loader:   loader,
		onReload: onReload,
		logger:   logger.With().Str("module", "config-watcher").Logger(),
	}
}

// Run watches until the context is canceled. It watches the parent
// directory rather than the file so atomic-rename saves keep working.
func (w *Watcher) Run(ctx context.Context) error {
	configPath, err := w.loader.Path()
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(configPath)); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(configPath) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("config watcher error")

		case <-fire:
			cfg, err := w.loader.Load()
			if err != nil {
				w.logger.Warn().Err(err).Msg("config reload failed; keeping previous config")
				continue
			}
			if err := cfg.Validate(); err != nil {
				w.logger.Warn().Err(err).Msg("reloaded config invalid; keeping previous config")
				continue
			}
			w.logger.Info().Msg("config reloaded")
			w.onReload(cfg)
		}
	}
}
