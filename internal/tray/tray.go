// Package tray implements the system tray icon and menu that own the
// launcher's main goroutine.
package tray

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned when Run is called a second time.
var ErrAlreadyRunning = errors.New("tray already running")

// State is the tray lifecycle state.
type State int32

const (
	NotRunning State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "not running"
}

// MenuHandle is a menu entry created by a Backend.
type MenuHandle interface {
	Clicked() <-chan struct{}
	SetChecked(checked bool)
}

// Backend is the tray widget toolkit.
type Backend interface {
	// Run blocks until Quit, calling onReady once the tray can be populated.
	Run(onReady, onExit func())
	Quit()
	SetIcon(icon []byte)
	SetTooltip(tooltip string)
	AddItem(item Item) MenuHandle
	AddSeparator()
}

// Tray is the single tray icon of the process. It is constructed once and
// run once.
type Tray struct {
	backend Backend
	icon    []byte
	items   []Item
	logger  zerolog.Logger

	state   atomic.Int32
	quit    atomic.Bool
	handles []MenuHandle

	mu      sync.Mutex
	ready   bool
	tooltip string

	clicks chan int
	done   chan struct{}
}

// New constructs the tray without showing it.
func New(backend Backend, icon []byte, tooltip string, items []Item, logger zerolog.Logger) *Tray {
	return &Tray{
		backend: backend,
		icon:    icon,
		items:   items,
		tooltip: tooltip,
		logger:  logger,
		clicks:  make(chan int),
		done:    make(chan struct{}),
	}
}

// State returns the lifecycle state.
func (t *Tray) State() State {
	return State(t.state.Load())
}

// Run shows the tray and blocks the calling goroutine until Quit. It must be
// called from the main goroutine on macOS.
func (t *Tray) Run() error {
	if !t.state.CompareAndSwap(int32(NotRunning), int32(Running)) {
		return ErrAlreadyRunning
	}
	if t.quit.Load() {
		return nil
	}
	t.backend.Run(t.onReady, t.onExit)
	return nil
}

// Quit makes Run return. A Quit that arrives before the native loop exists
// is remembered and honored once it starts.
func (t *Tray) Quit() {
	t.quit.Store(true)
	t.backend.Quit()
}

// SetTooltip updates the tooltip, deferring it until the tray is ready.
func (t *Tray) SetTooltip(tooltip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tooltip = tooltip
	if t.ready {
		t.backend.SetTooltip(tooltip)
	}
}

func (t *Tray) onReady() {
	if len(t.icon) > 0 {
		t.backend.SetIcon(t.icon)
	}

	t.handles = make([]MenuHandle, len(t.items))
	for i, item := range t.items {
		if item.Separator {
			t.backend.AddSeparator()
			continue
		}
		t.handles[i] = t.backend.AddItem(item)
	}
	t.refreshChecks()

	t.mu.Lock()
	t.ready = true
	t.backend.SetTooltip(t.tooltip)
	t.mu.Unlock()

	for i, h := range t.handles {
		if h != nil && t.items[i].Action != nil {
			go t.forward(i, h)
		}
	}
	go t.dispatch()

	t.logger.Debug().Int("items", len(t.items)).Msg("tray ready")

	if t.quit.Load() {
		t.backend.Quit()
	}
}

func (t *Tray) onExit() {
	close(t.done)
	t.logger.Debug().Msg("tray exited")
}

// forward funnels one item's clicks into the dispatcher.
func (t *Tray) forward(index int, h MenuHandle) {
	for {
		select {
		case <-t.done:
			return
		case _, ok := <-h.Clicked():
			if !ok {
				return
			}
			select {
			case t.clicks <- index:
			case <-t.done:
				return
			}
		}
	}
}

// dispatch runs actions one at a time, so menu callbacks never overlap.
func (t *Tray) dispatch() {
	for {
		select {
		case <-t.done:
			return
		case i := <-t.clicks:
			t.items[i].Action()
			t.refreshChecks()
		}
	}
}

func (t *Tray) refreshChecks() {
	for i, item := range t.items {
		if item.IsCheckbox() && t.handles[i] != nil {
			t.handles[i].SetChecked(item.Checked())
		}
	}
}
