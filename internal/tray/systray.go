package tray

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/getlantern/systray"
)

// Systray is the Backend backed by getlantern/systray.
type Systray struct{}

// NewSystray returns the native tray backend.
func NewSystray() *Systray {
	return &Systray{}
}

// Run starts the system tray. This blocks the calling goroutine (must be main).
func (Systray) Run(onReady, onExit func()) {
	systray.Run(onReady, onExit)
}

// Quit signals the tray to exit.
func (Systray) Quit() {
	systray.Quit()
}

func (Systray) SetIcon(icon []byte) {
	systray.SetIcon(icon)
}

func (Systray) SetTooltip(tooltip string) {
	systray.SetTooltip(tooltip)
}

func (Systray) AddSeparator() {
	systray.AddSeparator()
}

// AddItem creates a native menu entry. The toolkit has no separate
// primary-click handler, so the default item is placed first in the menu.
func (Systray) AddItem(item Item) MenuHandle {
	var mi *systray.MenuItem
	if item.IsCheckbox() {
		mi = systray.AddMenuItemCheckbox(item.Label, item.Tooltip, false)
	} else {
		mi = systray.AddMenuItem(item.Label, item.Tooltip)
	}
	if item.Disabled {
		mi.Disable()
	}
	return systrayItem{mi}
}

type systrayItem struct {
	mi *systray.MenuItem
}

func (s systrayItem) Clicked() <-chan struct{} {
	return s.mi.ClickedCh
}

func (s systrayItem) SetChecked(checked bool) {
	if checked {
		s.mi.Check()
	} else {
		s.mi.Uncheck()
	}
}

// LoadIcon reads the tray icon from the install root. Windows needs ICO data,
// so app/icon.ico is preferred there when present.
func LoadIcon(root string) ([]byte, error) {
	if runtime.GOOS == "windows" {
		if data, err := os.ReadFile(filepath.Join(root, "app", "icon.ico")); err == nil {
			return data, nil
		}
	}
	return os.ReadFile(filepath.Join(root, "app", "icon.png"))
}
