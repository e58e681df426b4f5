// Package projects indexes the ZeppOS projects in the user's projects
// directory and keeps the index fresh as the directory changes.
package projects

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ManifestFileName marks a directory as a ZeppOS project.
const ManifestFileName = "app.json"

// Project describes one project folder.
type Project struct {
	Name    string `json:"name"`
	AppName string `json:"appName,omitempty"`
	AppType string `json:"appType,omitempty"`
	AppID   int    `json:"appId,omitempty"`
}

type manifest struct {
	App struct {
		AppID   int    `json:"appId"`
		AppName string `json:"appName"`
		AppType string `json:"appType"`
	} `json:"app"`
}

// Scan lists the projects directly under dir, sorted by folder name.
// Folders without a readable app.json are skipped.
func Scan(dir string) ([]Project, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory %s: %w", dir, err)
	}

	var out []Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p, err := readProject(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func readProject(path string) (Project, error) {
	data, err := os.ReadFile(filepath.Join(path, ManifestFileName))
	if err != nil {
		return Project{}, err
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Project{}, fmt.Errorf("invalid %s in %s: %w", ManifestFileName, path, err)
	}

	return Project{
		Name:    filepath.Base(path),
		AppName: m.App.AppName,
		AppType: m.App.AppType,
		AppID:   m.App.AppID,
	}, nil
}

// Index caches the result of Scan for one directory.
type Index struct {
	dir string

	mu       sync.RWMutex
	projects []Project
}

// NewIndex creates an empty index over dir. Call Refresh to populate it.
func NewIndex(dir string) *Index {
	return &Index{dir: dir}
}

// Dir returns the indexed directory.
func (i *Index) Dir() string {
	return i.dir
}

// Refresh rescans the directory.
func (i *Index) Refresh() error {
	projects, err := Scan(i.dir)
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.projects = projects
	i.mu.Unlock()
	return nil
}

// List returns a copy of the cached projects.
func (i *Index) List() []Project {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]Project, len(i.projects))
	copy(out, i.projects)
	return out
}
