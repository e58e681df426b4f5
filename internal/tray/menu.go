package tray

import (
	"github.com/rs/zerolog"

	"github.com/zeppplayer/zeppplayer/internal/config"
)

// External links opened verbatim from the menu.
const (
	LinkWebsite = "https://melianmiko.ru/en/zepp_player"
	LinkSource  = "https://github.com/melianmiko/ZeppPlayer"
)

// Item is one entry of the declarative menu descriptor.
type Item struct {
	Label     string
	Tooltip   string
	Action    func()
	Checked   func() bool // non-nil makes the item a checkbox
	Disabled  bool
	Separator bool
	Default   bool
}

// IsCheckbox reports whether the item shows a checked state.
func (i Item) IsCheckbox() bool {
	return i.Checked != nil
}

// Preferences is the preference accessor the menu reads and toggles.
type Preferences interface {
	Get(key string) bool
	Toggle(key string) (bool, error)
}

// MenuConfig wires the menu to its collaborators.
type MenuConfig struct {
	AppURL  string
	Version string
	Prefs   Preferences
	Open    func(url string) error
	Exit    func()
	Logger  zerolog.Logger
}

// BuildMenu returns the launcher menu. The first item is the default action.
func BuildMenu(cfg MenuConfig) []Item {
	open := func(url string) func() {
		return func() {
			if err := cfg.Open(url); err != nil {
				cfg.Logger.Warn().Err(err).Str("url", url).Msg("failed to open browser")
			}
		}
	}
	toggle := func(key string) func() {
		return func() {
			v, err := cfg.Prefs.Toggle(key)
			if err != nil {
				cfg.Logger.Error().Err(err).Str("key", key).Msg("failed to save preference")
				return
			}
			cfg.Logger.Info().Str("key", key).Bool("value", v).Msg("preference changed")
		}
	}
	checked := func(key string) func() bool {
		return func() bool { return cfg.Prefs.Get(key) }
	}

	return []Item{
		{Label: "Open browser", Tooltip: cfg.AppURL, Action: open(cfg.AppURL), Default: true},
		{Separator: true},
		{Label: "Website", Action: open(LinkWebsite)},
		{Label: "Source code", Action: open(LinkSource)},
		{Separator: true},
		{Label: "Check for updates on start", Action: toggle(config.PrefCheckUpdates), Checked: checked(config.PrefCheckUpdates)},
		{Label: "Open browser on start", Action: toggle(config.PrefAutoBrowser), Checked: checked(config.PrefAutoBrowser)},
		{Separator: true},
		{Label: "ver. " + cfg.Version, Disabled: true},
		{Label: "Exit", Action: cfg.Exit},
	}
}
