package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/overfastsite/internal/logfields"
)

// TriggerConfigChange tags runs started by a config file edit.
const TriggerConfigChange = "config_change"

// ConfigWatcher requests a rebuild when the configuration file changes.
type ConfigWatcher struct {
	configPath string
	watcher    *fsnotify.Watcher
	rebuilder  *Rebuilder
}

// NewConfigWatcher creates a watcher for configPath.
func NewConfigWatcher(configPath string, r *Rebuilder) (*ConfigWatcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &ConfigWatcher{configPath: absPath, watcher: watcher, rebuilder: r}, nil
}

// Start watches the directory holding the config file; editors often replace
// the file rather than writing it in place.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}
	slog.Info("Watching configuration", logfields.Path(cw.configPath))
	go cw.loop(ctx)
	return nil
}

// Stop closes the underlying watcher.
func (cw *ConfigWatcher) Stop() error {
	return cw.watcher.Close()
}

func (cw *ConfigWatcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if cw.relevant(ev) {
				slog.Debug("Config change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
				cw.rebuilder.Trigger(TriggerConfigChange)
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", logfields.Error(err))
		}
	}
}

func (cw *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != cw.configPath {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}
