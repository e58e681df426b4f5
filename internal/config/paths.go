// Package config handles configuration loading, preference storage, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppDirName is the name of the per-user ZeppPlayer directory.
	AppDirName = "ZeppPlayer"

	// ProjectsDirName is the name of the bundled projects directory inside the install root.
	ProjectsDirName = "projects"

	// LogsDirName is the name of the logs directory inside the config directory.
	LogsDirName = "logs"
)

// File names
const (
	PreferencesFileName = "settings.yaml"
	LauncherFileName    = "launcher.yaml"
	LogFileName         = "zeppplayer.log"
)

// Layout is the set of directories the launcher works with.
type Layout struct {
	// Root is the install root holding the bundled app/ and projects/ trees.
	Root string
	// ConfigDir holds settings.yaml, launcher.yaml and logs/.
	ConfigDir string
	// ProjectsDir is where the user's projects live.
	ProjectsDir string
}

// BundledProjectsDir returns the default projects tree shipped inside the install root.
func (l Layout) BundledProjectsDir() string {
	return filepath.Join(l.Root, ProjectsDirName)
}

// PreferencesFile returns the path to settings.yaml.
func (l Layout) PreferencesFile() string {
	return filepath.Join(l.ConfigDir, PreferencesFileName)
}

// LogsDir returns the path to the logs directory.
func (l Layout) LogsDir() string {
	return filepath.Join(l.ConfigDir, LogsDirName)
}

// IsPortable reports whether the projects directory is the bundled one, in
// which case nothing is ever copied.
func (l Layout) IsPortable() bool {
	return filepath.Clean(l.ProjectsDir) == filepath.Clean(l.BundledProjectsDir())
}

// DefaultRoot returns the install root: the working directory the launcher
// was started from.
func DefaultRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// DefaultConfigDir returns the per-user config directory (e.g. ~/.config/ZeppPlayer).
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", AppDirName)
	}
	return filepath.Join(dir, AppDirName)
}

// DefaultProjectsDir returns the per-user projects directory (~/Documents/ZeppPlayer).
func DefaultProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DefaultRoot(), ProjectsDirName)
	}
	return filepath.Join(home, "Documents", AppDirName)
}
