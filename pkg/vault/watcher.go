package vault

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// ChangeType represents the type of vault change
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeModify ChangeType = "change"
	ChangeDelete ChangeType = "delete"
)

// Change describes one debounced vault change
type Change struct {
	Path string
	Type ChangeType
}

// ChangeHandler is called for each debounced vault change
type ChangeHandler func(Change)

// Watcher monitors a vault directory tree for note changes. Rapid writes to
// the same file are debounced.
type Watcher struct {
	watcher            *fsnotify.Watcher
	root               string
	stabilityThreshold time.Duration
	handler            ChangeHandler
	done               chan struct{}
	debounceTimers     map[string]*time.Timer
	debounceMu         sync.Mutex
	stopOnce           sync.Once
}

// WatcherConfig holds configuration for the vault watcher
type WatcherConfig struct {
	Root               string
	StabilityThreshold time.Duration
	OnChange           ChangeHandler
}

// NewWatcher creates a vault watcher
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("vault root is required")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if cfg.StabilityThreshold == 0 {
		cfg.StabilityThreshold = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:            fsWatcher,
		root:               cfg.Root,
		stabilityThreshold: cfg.StabilityThreshold,
		handler:            cfg.OnChange,
		done:               make(chan struct{}),
		debounceTimers:     make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the vault tree
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch vault: %w", err)
	}

	go w.eventLoop()

	log.Info().Str("path", w.root).Msg("Vault watcher started")

	return nil
}

// Stop stops the watcher and cancels pending debounce timers
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	clear(w.debounceTimers)
	w.debounceMu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	log.Info().Msg("Vault watcher stopped")
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if path == w.root {
		return false
	}
	// hidden directories (.obsidian, .git, .trash) are not part of the vault content
	return strings.HasPrefix(base, ".")
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Vault watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[event.Name]; exists {
		timer.Stop()
	}

	eventCopy := event
	w.debounceTimers[event.Name] = time.AfterFunc(w.stabilityThreshold, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, eventCopy.Name)
		w.debounceMu.Unlock()

		select {
		case <-w.done:
			return
		default:
			w.processEvent(eventCopy)
		}
	})
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	var change Change
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		change = Change{Path: event.Name, Type: ChangeAdd}
		// new directories need to be watched too
		_ = w.addRecursive(event.Name)

	case event.Op&fsnotify.Write == fsnotify.Write:
		change = Change{Path: event.Name, Type: ChangeModify}

	case event.Op&fsnotify.Remove == fsnotify.Remove,
		event.Op&fsnotify.Rename == fsnotify.Rename:
		// a rename shows up again as a create under the new name
		change = Change{Path: event.Name, Type: ChangeDelete}

	default:
		return
	}

	if w.handler != nil {
		w.handler(change)
	}
}
