package launcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeppplayer/zeppplayer/internal/config"
	"github.com/zeppplayer/zeppplayer/internal/server"
	"github.com/zeppplayer/zeppplayer/internal/tray"
	"github.com/zeppplayer/zeppplayer/internal/updater"
)

const appURL = "http://127.0.0.1:3195"

type fakeProber bool

func (p fakeProber) Probe(context.Context) bool { return bool(p) }

type fakePreparer struct {
	err   error
	calls int
}

func (p *fakePreparer) Prepare() error {
	p.calls++
	return p.err
}

type fakeBrowser struct {
	mu     sync.Mutex
	opened []string
}

func (b *fakeBrowser) Open(url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, url)
	return nil
}

func (b *fakeBrowser) urls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.opened...)
}

type prefsMap map[string]bool

func (p prefsMap) Get(key string) bool {
	if v, ok := p[key]; ok {
		return v
	}
	return config.DefaultPreferences[key]
}

func (p prefsMap) Toggle(key string) (bool, error) {
	p[key] = !p.Get(key)
	return p[key], nil
}

type fakeServer struct {
	err     error
	release chan struct{}
}

func (s *fakeServer) Serve() error {
	if s.err != nil {
		return s.err
	}
	<-s.release
	return nil
}

type fakeTray struct {
	items    []tray.Item
	runs     int
	quit     chan struct{}
	once     sync.Once
	mu       sync.Mutex
	tooltip  string
	blocking bool
}

func (t *fakeTray) Run() error {
	t.runs++
	if t.blocking {
		<-t.quit
	}
	return nil
}

func (t *fakeTray) Quit() { t.once.Do(func() { close(t.quit) }) }

func (t *fakeTray) SetTooltip(tooltip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tooltip = tooltip
}

type fakeChecker struct {
	result *updater.UpdateResult
	panics bool
	notify func(*updater.UpdateResult)
	calls  int
}

func (c *fakeChecker) Check(context.Context) *updater.UpdateResult {
	c.calls++
	if c.panics {
		panic("boom")
	}
	if c.result != nil && c.result.Available {
		c.notify(c.result)
	}
	return c.result
}

type harness struct {
	live     bool
	goos     string
	prefs    prefsMap
	preparer *fakePreparer
	browser  *fakeBrowser
	server   *fakeServer
	startErr error
	prefsErr error
	checker  *fakeChecker

	trays        []*fakeTray
	serverStarts int
	checkers     int
	prefsOpens   int
	logOpens     int
	exits        []int
}

func newHarness() *harness {
	return &harness{
		goos:     "linux",
		prefs:    prefsMap{},
		preparer: &fakePreparer{},
		browser:  &fakeBrowser{},
		server:   &fakeServer{release: make(chan struct{})},
		checker:  &fakeChecker{},
	}
}

func (h *harness) launcher() *Launcher {
	return New(Options{
		AppURL:   appURL,
		Version:  "1.7.2",
		GOOS:     h.goos,
		Prober:   fakeProber(h.live),
		Preparer: h.preparer,
		Browser:  h.browser,
		OpenLog: func() error {
			h.logOpens++
			return nil
		},
		OpenPrefs: func() (tray.Preferences, error) {
			h.prefsOpens++
			if h.prefsErr != nil {
				return nil, h.prefsErr
			}
			return h.prefs, nil
		},
		StartServer: func() (WebServer, error) {
			h.serverStarts++
			if h.startErr != nil {
				return nil, h.startErr
			}
			return h.server, nil
		},
		NewTray: func(items []tray.Item) Tray {
			t := &fakeTray{items: items, quit: make(chan struct{})}
			h.trays = append(h.trays, t)
			return t
		},
		NewChecker: func(onAvailable func(*updater.UpdateResult)) UpdateChecker {
			h.checkers++
			h.checker.notify = onAvailable
			return h.checker
		},
		Exit:   func(code int) { h.exits = append(h.exits, code) },
		Logger: zerolog.Nop(),
	})
}

func TestRun_LiveInstanceOnlyOpensBrowser(t *testing.T) {
	h := newHarness()
	h.live = true
	h.prefs[config.PrefAutoBrowser] = false

	require.NoError(t, h.launcher().Run(context.Background()))

	// Hand-off always opens the browser regardless of auto_browser.
	assert.Equal(t, []string{appURL}, h.browser.urls())
	assert.Zero(t, h.preparer.calls)
	assert.Zero(t, h.serverStarts)
	assert.Empty(t, h.trays)
	assert.Zero(t, h.checkers)
	assert.Zero(t, h.prefsOpens)
	assert.Zero(t, h.logOpens)
}

func TestRun_LiveInstanceIgnoresUnreadablePreferences(t *testing.T) {
	h := newHarness()
	h.live = true
	h.prefsErr = errors.New("failed to parse YAML")

	require.NoError(t, h.launcher().Run(context.Background()))
	assert.Equal(t, []string{appURL}, h.browser.urls())
}

func TestRun_UnreadablePreferencesAreFatalForNewInstance(t *testing.T) {
	h := newHarness()
	h.prefsErr = errors.New("failed to parse YAML")

	err := h.launcher().Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load preferences")
	assert.Equal(t, 1, h.preparer.calls)
	assert.Empty(t, h.trays)
	assert.Zero(t, h.serverStarts)
}

func TestRun_NewInstance(t *testing.T) {
	h := newHarness()
	l := h.launcher()

	require.NoError(t, l.Run(context.Background()))
	l.WaitBackground()

	assert.Equal(t, 1, h.preparer.calls)
	assert.Equal(t, 1, h.logOpens)
	assert.Equal(t, 1, h.prefsOpens)
	assert.Equal(t, 1, h.serverStarts)
	require.Len(t, h.trays, 1)
	assert.Equal(t, 1, h.trays[0].runs)
	assert.Equal(t, []string{appURL}, h.browser.urls())
	assert.Equal(t, 1, h.checkers)
	assert.Equal(t, 1, h.checker.calls)
}

func TestRun_PrepareFailureIsFatal(t *testing.T) {
	h := newHarness()
	h.preparer.err = errors.New("read-only file system")

	err := h.launcher().Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to prepare directories")
	assert.Zero(t, h.logOpens)
	assert.Zero(t, h.prefsOpens)
	assert.Empty(t, h.trays)
	assert.Zero(t, h.serverStarts)
	assert.Empty(t, h.browser.urls())
}

func TestRun_BindFailureIsFatal(t *testing.T) {
	h := newHarness()
	h.startErr = server.ErrPortInUse

	err := h.launcher().Run(context.Background())
	require.ErrorIs(t, err, server.ErrPortInUse)
	require.Len(t, h.trays, 1)
	assert.Zero(t, h.trays[0].runs)
	assert.Empty(t, h.browser.urls())
	assert.Zero(t, h.checkers)
}

func TestRun_AutoBrowserDisabled(t *testing.T) {
	h := newHarness()
	h.prefs[config.PrefAutoBrowser] = false

	require.NoError(t, h.launcher().Run(context.Background()))
	assert.Empty(t, h.browser.urls())
}

func TestRun_CheckUpdatesDisabled(t *testing.T) {
	h := newHarness()
	h.prefs[config.PrefCheckUpdates] = false

	l := h.launcher()
	require.NoError(t, l.Run(context.Background()))
	l.WaitBackground()
	assert.Zero(t, h.checkers)
	assert.Zero(t, h.checker.calls)
}

func TestRun_DarwinSkipsUpdateCheck(t *testing.T) {
	h := newHarness()
	h.goos = "darwin"

	l := h.launcher()
	require.NoError(t, l.Run(context.Background()))
	l.WaitBackground()
	assert.Zero(t, h.checkers)
}

func TestRun_UpdateAvailableSetsTooltip(t *testing.T) {
	h := newHarness()
	h.checker.result = &updater.UpdateResult{Available: true, CurrentVersion: "1.7.2", LatestVersion: "1.8.0"}

	l := h.launcher()
	require.NoError(t, l.Run(context.Background()))
	l.WaitBackground()

	h.trays[0].mu.Lock()
	defer h.trays[0].mu.Unlock()
	assert.Equal(t, "ZeppPlayer (update available: v1.8.0)", h.trays[0].tooltip)
}

func TestRun_CheckerPanicIsContained(t *testing.T) {
	h := newHarness()
	h.checker.panics = true

	l := h.launcher()
	require.NoError(t, l.Run(context.Background()))
	l.WaitBackground()
	assert.Equal(t, 1, h.checker.calls)
}

func TestRun_ServeFailureEndsTrayLoop(t *testing.T) {
	h := newHarness()
	h.server.err = errors.New("accept failed")
	h.prefs[config.PrefCheckUpdates] = false

	l := h.launcher()
	origNewTray := l.opts.NewTray
	l.opts.NewTray = func(items []tray.Item) Tray {
		ft := origNewTray(items).(*fakeTray)
		ft.blocking = true
		return ft
	}

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accept failed")
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after server failure")
	}
}

func TestRun_ExitMenuItemExitsImmediately(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.launcher().Run(context.Background()))

	items := h.trays[0].items
	last := items[len(items)-1]
	require.Equal(t, "Exit", last.Label)
	last.Action()
	assert.Equal(t, []int{0}, h.exits)
}

func TestUpdatesRestricted(t *testing.T) {
	assert.True(t, UpdatesRestricted("darwin"))
	assert.False(t, UpdatesRestricted("windows"))
	assert.False(t, UpdatesRestricted("linux"))
}

func TestHeadless_QuitUnblocksRun(t *testing.T) {
	h := NewHeadless(zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- h.Run() }()

	h.Quit()
	h.Quit()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("headless Run did not return")
	}
}
