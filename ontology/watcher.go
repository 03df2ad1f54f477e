package ontology

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// reloadEventBuffer is the size of the reload event channel.
	reloadEventBuffer = 16

	defaultDebounce = 500 * time.Millisecond
)

// Reloader reloads the current module set.
type Reloader interface {
	Reload(ctx context.Context) error
}

// WatchConfig configures module file watching.
type WatchConfig struct {
	// Debounce is how long to collect changes before reloading.
	Debounce time.Duration

	// Extensions lists the file extensions that trigger a reload.
	Extensions []string
}

// ReloadEvent reports one debounced reload.
type ReloadEvent struct {
	// Paths are the changed files that triggered the reload.
	Paths []string

	// Err is the reload error, if any. The previous graph stays current.
	Err error
}

// Watcher reloads the ontology when module files change on disk.
type Watcher struct {
	reloader   Reloader
	files      []string
	debounce   time.Duration
	extensions map[string]bool
	fsw        *fsnotify.Watcher
	logger     *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events  chan ReloadEvent
	dropped atomic.Int64
}

// NewWatcher creates a watcher for the given module files. Their directories
// are watched so that editors replacing files atomically are still seen.
func NewWatcher(r Reloader, files []string, cfg WatchConfig, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}

	extensions := make(map[string]bool)
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".rdf", ".owl"}
	}
	for _, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}

	w := &Watcher{
		reloader:   r,
		files:      slices.Clone(files),
		debounce:   cfg.Debounce,
		extensions: extensions,
		fsw:        fsw,
		logger:     logger,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan ReloadEvent, reloadEventBuffer),
	}
	for _, f := range files {
		if h, err := fileHash(f); err == nil {
			w.hashes[f] = h
		}
	}
	return w, nil
}

// Events returns the channel of reload events. It is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan ReloadEvent {
	return w.events
}

// Start watches the module directories until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	var dirs []string
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if slices.Contains(dirs, dir) {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		dirs = append(dirs, dir)
		w.logger.Debug("Watching module directory", "path", dir)
	}

	go w.processEvents(ctx)

	w.logger.Info("Module watcher started",
		"directories", len(dirs),
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// DroppedEvents returns the number of reload events dropped because nobody
// was reading them.
func (w *Watcher) DroppedEvents() int64 {
	return w.dropped.Load()
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Module watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}
	if !slices.Contains(w.files, event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Module change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var changed []string
	for path := range toProcess {
		h, err := fileHash(path)
		if err != nil {
			// Removed or mid-rename; the reload reports it if it persists.
			changed = append(changed, path)
			continue
		}
		w.hashMu.Lock()
		old, had := w.hashes[path]
		w.hashes[path] = h
		w.hashMu.Unlock()
		if had && old == h {
			continue
		}
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)

	err := w.reloader.Reload(ctx)
	if err != nil {
		w.logger.Warn("Ontology reload failed, keeping previous graph", "paths", changed, "error", err)
	} else {
		w.logger.Info("Ontology reloaded", "paths", changed)
	}

	select {
	case w.events <- ReloadEvent{Paths: changed, Err: err}:
	default:
		w.dropped.Add(1)
	}
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
