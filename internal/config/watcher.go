package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Overrides are the hot-reloadable settings. Model routing is the one knob
// operators actually change while the server runs.
type Overrides struct {
	ModelID       string `yaml:"modelId"`
	BranchModelID string `yaml:"branchModelId"`
}

// Watcher monitors the overrides file and notifies callbacks when it
// changes. A zero OverridesPath disables watching entirely.
type Watcher struct {
	path      string
	logger    *zap.Logger
	fsWatcher *fsnotify.Watcher

	mu        sync.RWMutex
	current   Overrides
	callbacks []func(Overrides)
	stopCh    chan struct{}
}

// NewWatcher loads the overrides file once, then starts watching it for
// writes. Callers register interest with OnChange before Stop.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		path:   path,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if path == "" {
		return w, nil
	}

	if err := w.reload(); err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(path); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.fsWatcher = fsWatcher
	go w.watchLoop()

	logger.Info("watching overrides file", zap.String("path", path))
	return w, nil
}

// Current returns the most recently loaded overrides.
func (w *Watcher) Current() Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after each successful reload.
func (w *Watcher) OnChange(cb func(Overrides)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Stop shuts down the watch loop. Safe to call when watching is disabled.
func (w *Watcher) Stop() {
	if w.fsWatcher != nil {
		close(w.stopCh)
		w.fsWatcher.Close()
	}
}

func (w *Watcher) watchLoop() {
	// Debounce rapid write bursts from editors that truncate then write.
	var debounce *time.Timer
	const debounceDelay = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				if err := w.reload(); err != nil {
					w.logger.Error("failed to reload overrides", zap.Error(err))
					return
				}
				w.notify()
			})
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("overrides watcher error", zap.Error(err))
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("failed to read overrides file: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("failed to parse overrides file: %w", err)
	}
	w.mu.Lock()
	w.current = o
	w.mu.Unlock()
	w.logger.Info("overrides loaded",
		zap.String("modelId", o.ModelID),
		zap.String("branchModelId", o.BranchModelID),
	)
	return nil
}

func (w *Watcher) notify() {
	w.mu.RLock()
	callbacks := make([]func(Overrides), len(w.callbacks))
	copy(callbacks, w.callbacks)
	current := w.current
	w.mu.RUnlock()

	for _, cb := range callbacks {
		cb(current)
	}
}
