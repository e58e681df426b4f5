// Package browser opens URLs in the system default browser.
package browser

import (
	"context"
	"os/exec"
	"runtime"
)

// System opens URLs with the platform's URL handler.
type System struct {
	goos  string
	start func(name string, args ...string) error
}

// New returns a System for the running platform.
func New() *System {
	return &System{goos: runtime.GOOS, start: startDetached}
}

// Open launches the default browser on url without waiting for it.
func (s *System) Open(url string) error {
	name, args := Command(s.goos, url)
	return s.start(name, args...)
}

// Command returns the program and arguments that open url on goos.
func Command(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.CommandContext(context.Background(), name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
