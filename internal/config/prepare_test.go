package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	return Layout{
		Root:        "/opt/zeppplayer",
		ConfigDir:   "/home/user/.config/ZeppPlayer",
		ProjectsDir: "/home/user/Documents/ZeppPlayer",
	}
}

func seedBundle(t *testing.T, fs afero.Fs, root string) {
	t.Helper()
	files := map[string]string{
		"projects/demo/app.json":             `{"app":{"appName":"demo"}}`,
		"projects/demo/watchface/index.js":   "WatchFace({})",
		"projects/demo/assets/bg.png":        "png-bytes",
		"projects/second/app.json":           `{"app":{"appName":"second"}}`,
		"projects/second/page/gt/index.js":   "Page({})",
		"projects/second/assets/icons/a.png": "a",
		"app/icon.png":                       "icon",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
}

func listTree(t *testing.T, fs afero.Fs, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestPrepare_FreshInstall(t *testing.T) {
	fs := afero.NewMemMapFs()
	layout := testLayout()
	seedBundle(t, fs, layout.Root)

	require.NoError(t, NewPreparer(fs, layout).Prepare())

	exists, err := afero.DirExists(fs, layout.ConfigDir)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.DirExists(fs, layout.ProjectsDir)
	require.NoError(t, err)
	assert.True(t, exists)

	bundled := listTree(t, fs, layout.BundledProjectsDir())
	copied := listTree(t, fs, layout.ProjectsDir)
	assert.Equal(t, keys(bundled), keys(copied))
	assert.Equal(t, bundled, copied)
}

func TestPrepare_Idempotent(t *testing.T) {
	mem := afero.NewMemMapFs()
	layout := testLayout()
	seedBundle(t, mem, layout.Root)

	fs := &countingFs{Fs: mem}
	preparer := NewPreparer(fs, layout)

	require.NoError(t, preparer.Prepare())
	assert.NotZero(t, fs.writes)

	fs.writes = 0
	require.NoError(t, preparer.Prepare())
	assert.Equal(t, 0, fs.writes)
}

func TestPrepare_ExistingProjectsUntouched(t *testing.T) {
	fs := afero.NewMemMapFs()
	layout := testLayout()
	seedBundle(t, fs, layout.Root)

	userFile := filepath.Join(layout.ProjectsDir, "mine", "app.json")
	require.NoError(t, fs.MkdirAll(filepath.Dir(userFile), 0755))
	require.NoError(t, afero.WriteFile(fs, userFile, []byte("{}"), 0644))

	require.NoError(t, NewPreparer(fs, layout).Prepare())

	tree := listTree(t, fs, layout.ProjectsDir)
	assert.Equal(t, []string{"mine/app.json"}, keys(tree))
}

func TestPrepare_PortableLayoutNeverCopies(t *testing.T) {
	mem := afero.NewMemMapFs()
	layout := testLayout()
	layout.ProjectsDir = filepath.Join(layout.Root, "projects")
	seedBundle(t, mem, layout.Root)

	fs := &countingFs{Fs: mem}
	require.NoError(t, NewPreparer(fs, layout).Prepare())

	// Only the config directory was created.
	assert.Equal(t, 1, fs.writes)
}

func TestPrepare_MissingBundleIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	layout := testLayout()

	err := NewPreparer(fs, layout).Prepare()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed projects directory")
}

func TestPrepare_ReadOnlyFilesystemIsFatal(t *testing.T) {
	mem := afero.NewMemMapFs()
	layout := testLayout()
	seedBundle(t, mem, layout.Root)

	err := NewPreparer(afero.NewReadOnlyFs(mem), layout).Prepare()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}

// failingCreateFs fails the nth file creation under prefix.
type failingCreateFs struct {
	afero.Fs
	prefix  string
	failAt  int
	created int
}

func (f *failingCreateFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 && strings.HasPrefix(name, f.prefix) {
		f.created++
		if f.created == f.failAt {
			return nil, &os.PathError{Op: "open", Path: name, Err: syscall.ENOSPC}
		}
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestPrepare_FailedSeedLeavesNoPartialTree(t *testing.T) {
	mem := afero.NewMemMapFs()
	layout := testLayout()
	seedBundle(t, mem, layout.Root)

	broken := &failingCreateFs{Fs: mem, prefix: layout.ProjectsDir, failAt: 2}
	err := NewPreparer(broken, layout).Prepare()
	require.Error(t, err)
	assert.ErrorIs(t, err, syscall.ENOSPC)

	exists, err := afero.Exists(mem, layout.ProjectsDir)
	require.NoError(t, err)
	assert.False(t, exists)

	// The next launch seeds the full tree.
	require.NoError(t, NewPreparer(mem, layout).Prepare())
	assert.Equal(t, listTree(t, mem, layout.BundledProjectsDir()), listTree(t, mem, layout.ProjectsDir))
}

func TestLayout_IsPortable(t *testing.T) {
	tests := []struct {
		name     string
		projects string
		expected bool
	}{
		{name: "bundled", projects: "/opt/zeppplayer/projects", expected: true},
		{name: "bundled with trailing slash", projects: "/opt/zeppplayer/projects/", expected: true},
		{name: "user documents", projects: "/home/user/Documents/ZeppPlayer", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := Layout{Root: "/opt/zeppplayer", ProjectsDir: tt.projects}
			assert.Equal(t, tt.expected, layout.IsPortable())
		})
	}
}
