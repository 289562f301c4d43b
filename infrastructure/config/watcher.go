package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file on change and applies its runtime section
type Watcher struct {
	loader   *Loader
	settings *RuntimeSettings
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.Mutex
	onChange []func(*Config)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the loader's file. The directory is watched as well so
// editors that save by rename are noticed.
func NewWatcher(loader *Loader, settings *RuntimeSettings, logger *zap.Logger) (*Watcher, error) {
	if loader.Path() == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(loader.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	return &Watcher{
		loader:   loader,
		settings: settings,
		watcher:  fw,
		logger:   logger,
		debounce: 100 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}, nil
}

// OnChange registers a callback run after each successful reload
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.loader.Path()))
}

// Stop stops watching for configuration changes
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Configuration watcher stopped")
	})
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer
	target := filepath.Clean(w.loader.Path())

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
		return
	}

	old := w.settings.Image()
	oldPageSize := w.settings.PageSize()
	w.settings.Apply(cfg)

	w.logger.Info("Configuration reloaded",
		zap.Int("imageMaxWidth", cfg.Image.MaxWidth),
		zap.Float64("imageQuality", cfg.Image.Quality),
		zap.String("upscalePolicy", cfg.Image.UpscalePolicy),
		zap.Int("pageSize", cfg.PageSize),
		zap.Bool("imageChanged", old != cfg.Image),
		zap.Bool("pageSizeChanged", oldPageSize != cfg.PageSize),
	)

	w.mu.Lock()
	handlers := append([]func(*Config){}, w.onChange...)
	w.mu.Unlock()
	for _, handler := range handlers {
		handler(cfg)
	}
}
