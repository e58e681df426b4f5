// Package launcher decides whether to start a new instance or hand off to a
// running one, and supervises the tray, web server and update check.
package launcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zeppplayer/zeppplayer/internal/config"
	"github.com/zeppplayer/zeppplayer/internal/tray"
	"github.com/zeppplayer/zeppplayer/internal/updater"
)

// Prober reports whether another instance already serves the app.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Preparer establishes the directory layout.
type Preparer interface {
	Prepare() error
}

// Browser opens URLs in the system browser.
type Browser interface {
	Open(url string) error
}

// WebServer serves requests on an already bound listener.
type WebServer interface {
	Serve() error
}

// UpdateChecker runs one update check and never fails the caller.
type UpdateChecker interface {
	Check(ctx context.Context) *updater.UpdateResult
}

// Tray is the owned tray handle.
type Tray interface {
	Run() error
	Quit()
	SetTooltip(tooltip string)
}

// Options wires the launcher to its collaborators.
type Options struct {
	AppURL  string
	Version string
	GOOS    string

	Prober   Prober
	Preparer Preparer
	Browser  Browser

	// OpenLog attaches persistent logging. It runs only for a new instance,
	// after Prepare. May be nil.
	OpenLog func() error
	// OpenPrefs loads the preference set after Prepare. A hand-off launch
	// never reads it.
	OpenPrefs func() (tray.Preferences, error)

	// StartServer binds the port and returns the server. It runs after the
	// tray is constructed.
	StartServer func() (WebServer, error)
	// NewTray constructs, but does not run, the tray for the given menu.
	NewTray func(items []tray.Item) Tray
	// NewChecker builds the update checker; onAvailable updates the tray.
	NewChecker func(onAvailable func(*updater.UpdateResult)) UpdateChecker
	// Exit terminates the process immediately.
	Exit func(code int)

	Logger zerolog.Logger
}

// Launcher is the startup orchestrator.
type Launcher struct {
	opts   Options
	logger zerolog.Logger

	serveErr chan error
	bg       sync.WaitGroup
}

// New creates a launcher.
func New(opts Options) *Launcher {
	return &Launcher{
		opts:     opts,
		logger:   opts.Logger,
		serveErr: make(chan error, 1),
	}
}

// UpdatesRestricted reports whether the startup update check is skipped on goos.
func UpdatesRestricted(goos string) bool {
	return goos == "darwin"
}

// Run executes the startup sequence and blocks in the tray loop. It returns
// nil immediately when another instance is already live.
func (l *Launcher) Run(ctx context.Context) error {
	if l.opts.Prober.Probe(ctx) {
		l.logger.Info().Str("url", l.opts.AppURL).Msg("instance already running, opening browser")
		l.openApp()
		return nil
	}

	if err := l.opts.Preparer.Prepare(); err != nil {
		return fmt.Errorf("failed to prepare directories: %w", err)
	}

	if l.opts.OpenLog != nil {
		if err := l.opts.OpenLog(); err != nil {
			l.logger.Warn().Err(err).Msg("file logging disabled")
		}
	}

	prefs, err := l.opts.OpenPrefs()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}

	t := l.opts.NewTray(tray.BuildMenu(tray.MenuConfig{
		AppURL:  l.opts.AppURL,
		Version: l.opts.Version,
		Prefs:   prefs,
		Open:    l.opts.Browser.Open,
		Exit:    l.exit,
		Logger:  l.logger,
	}))

	srv, err := l.opts.StartServer()
	if err != nil {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	go l.serve(srv, t)

	if prefs.Get(config.PrefAutoBrowser) {
		l.openApp()
	}

	if !UpdatesRestricted(l.opts.GOOS) && prefs.Get(config.PrefCheckUpdates) {
		checker := l.opts.NewChecker(func(r *updater.UpdateResult) {
			t.SetTooltip(fmt.Sprintf("ZeppPlayer (update available: v%s)", r.LatestVersion))
		})
		l.bg.Add(1)
		go l.checkUpdates(ctx, checker)
	}

	l.logger.Info().Str("url", l.opts.AppURL).Msg("ZeppPlayer is running")
	if err := t.Run(); err != nil {
		return err
	}

	select {
	case err := <-l.serveErr:
		return fmt.Errorf("web server stopped: %w", err)
	default:
		return nil
	}
}

// WaitBackground waits for the background update check to finish.
func (l *Launcher) WaitBackground() {
	l.bg.Wait()
}

func (l *Launcher) openApp() {
	if err := l.opts.Browser.Open(l.opts.AppURL); err != nil {
		l.logger.Warn().Err(err).Msg("failed to open browser")
	}
}

// serve runs the server. An unexpected stop ends the tray loop.
func (l *Launcher) serve(srv WebServer, t Tray) {
	err := srv.Serve()
	if err == nil {
		return
	}
	l.logger.Error().Err(err).Msg("web server failed")
	l.serveErr <- err
	t.Quit()
}

func (l *Launcher) checkUpdates(ctx context.Context, checker UpdateChecker) {
	defer l.bg.Done()
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Str("panic", fmt.Sprint(r)).Msg("update checker panicked")
		}
	}()
	checker.Check(ctx)
}

// exit is the terminal menu action: a hard exit that skips deferred cleanup
// and does not wait for the server goroutine.
func (l *Launcher) exit() {
	l.logger.Info().Msg("exit requested")
	l.opts.Exit(0)
}
