package config

import (
	"fmt"
	"sync"

	"github.com/spf13/afero"
)

// Recognized preference keys.
const (
	PrefCheckUpdates = "check_updates"
	PrefAutoBrowser  = "auto_browser"
)

// DefaultPreferences are applied when a key is absent from settings.yaml.
var DefaultPreferences = map[string]bool{
	PrefCheckUpdates: true,
	PrefAutoBrowser:  true,
}

// Prefs is a key-value preference store backed by settings.yaml.
// Every Set is persisted immediately; Get never writes.
type Prefs struct {
	fs   afero.Fs
	path string

	mu     sync.Mutex
	values map[string]interface{}
}

// OpenPrefs loads the preference file at path. A missing file yields an
// empty store that resolves every key to its default.
func OpenPrefs(fs afero.Fs, path string) (*Prefs, error) {
	p := &Prefs{fs: fs, path: path, values: map[string]interface{}{}}
	if !FileExists(fs, path) {
		return p, nil
	}
	if err := LoadYAML(fs, path, &p.values); err != nil {
		return nil, err
	}
	if p.values == nil {
		p.values = map[string]interface{}{}
	}
	return p, nil
}

// Bool returns the value of key, or def when the key is absent or not a bool.
func (p *Prefs) Bool(key string, def bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := p.values[key].(bool); ok {
		return v
	}
	return def
}

// Get returns the value of a recognized key, falling back to DefaultPreferences.
func (p *Prefs) Get(key string) bool {
	return p.Bool(key, DefaultPreferences[key])
}

// Set stores value under key and writes the file once.
func (p *Prefs) Set(key string, value bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, had := p.values[key]
	p.values[key] = value
	if err := SaveYAML(p.fs, p.path, p.values); err != nil {
		if had {
			p.values[key] = prev
		} else {
			delete(p.values, key)
		}
		return fmt.Errorf("failed to persist preference %s: %w", key, err)
	}
	return nil
}

// Toggle flips key and persists the new value, returning it.
func (p *Prefs) Toggle(key string) (bool, error) {
	next := !p.Get(key)
	if err := p.Set(key, next); err != nil {
		return !next, err
	}
	return next, nil
}
