package projects

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DebounceDelay coalesces bursts of filesystem events into one rescan.
const DebounceDelay = 100 * time.Millisecond

// Watcher rescans an Index whenever its directory changes.
type Watcher struct {
	index     *Index
	fsWatcher *fsnotify.Watcher
	logger    zerolog.Logger
	done      chan struct{}
	stopOnce  sync.Once

	debounceMu sync.Mutex
	timer      *time.Timer
}

// NewWatcher creates a watcher for index.
func NewWatcher(index *Index, logger zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		index:     index,
		fsWatcher: fsWatcher,
		logger:    logger,
		done:      make(chan struct{}),
	}, nil
}

// Start performs an initial rescan and begins watching.
func (w *Watcher) Start() error {
	if err := w.index.Refresh(); err != nil {
		return err
	}
	if err := w.fsWatcher.Add(w.index.Dir()); err != nil {
		return err
	}
	w.watchProjects()

	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.debounceMu.Unlock()
	})
}

// watchProjects adds a watch on every indexed project folder so manifest
// edits are noticed. Adding an existing watch is a no-op.
func (w *Watcher) watchProjects() {
	for _, p := range w.index.List() {
		path := filepath.Join(w.index.Dir(), p.Name)
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.Debug().Err(err).Str("path", path).Msg("failed to watch project")
		}
	}
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.Trace().Str("op", event.Op.String()).Str("path", event.Name).Msg("fsnotify")

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(DebounceDelay, w.rescan)
}

func (w *Watcher) rescan() {
	select {
	case <-w.done:
		return
	default:
	}

	if err := w.index.Refresh(); err != nil {
		w.logger.Warn().Err(err).Msg("failed to rescan projects")
		return
	}
	w.watchProjects()
	w.logger.Debug().Int("count", len(w.index.List())).Msg("projects rescanned")
}
