package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Preparer establishes the directory layout before the server or tray start.
type Preparer struct {
	fs     afero.Fs
	layout Layout
}

// NewPreparer creates a preparer for layout on fs.
func NewPreparer(fs afero.Fs, layout Layout) *Preparer {
	return &Preparer{fs: fs, layout: layout}
}

// Prepare creates the config directory if missing and, on first launch, seeds
// the projects directory with a copy of the bundled projects tree. It is
// idempotent: once both directories exist it touches nothing.
func (p *Preparer) Prepare() error {
	if exists, err := afero.DirExists(p.fs, p.layout.ConfigDir); err != nil {
		return fmt.Errorf("failed to stat config directory: %w", err)
	} else if !exists {
		if err := p.fs.MkdirAll(p.layout.ConfigDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", p.layout.ConfigDir, err)
		}
	}

	if p.layout.IsPortable() {
		return nil
	}

	exists, err := afero.Exists(p.fs, p.layout.ProjectsDir)
	if err != nil {
		return fmt.Errorf("failed to stat projects directory: %w", err)
	}
	if exists {
		return nil
	}

	if err := CopyTree(p.fs, p.layout.BundledProjectsDir(), p.layout.ProjectsDir); err != nil {
		// A partial tree would be taken as seeded on the next launch.
		if rmErr := p.fs.RemoveAll(p.layout.ProjectsDir); rmErr != nil {
			return fmt.Errorf("failed to seed projects directory %s: %w (cleanup failed: %v)", p.layout.ProjectsDir, err, rmErr)
		}
		return fmt.Errorf("failed to seed projects directory %s: %w", p.layout.ProjectsDir, err)
	}
	return nil
}

// CopyTree recursively copies the directory src to dst, preserving file modes.
// dst must not exist yet.
func CopyTree(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, info.Mode().Perm()|0700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(fs, path, target, info.Mode().Perm())
	})
}

func copyFile(fs afero.Fs, src, dst string, perm os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy data: %w", err)
	}
	return out.Close()
}
