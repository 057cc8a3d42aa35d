package vfs

import (
	"io/fs"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSeedsStructure(t *testing.T) {
	r := NewRegistry()
	dir, err := r.Setup("root", 0o750, Structure{
		"Core": Structure{
			"AbstractFactory": Structure{
				"test.php":    "some text content",
				"other.php":   []byte("Some more text content"),
				"Invalid.csv": "Something else",
			},
			"AnEmptyFolder":   Structure{},
			"badlocation.php": "some bad content",
		},
		"plain": map[string]any{"note.txt": "n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "root", dir.Name())
	assert.Equal(t, "/root", dir.Location())

	fsys := dir.Fs()
	info, err := fsys.Stat("/root")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())

	data, err := afero.ReadFile(fsys, "/root/Core/AbstractFactory/other.php")
	require.NoError(t, err)
	assert.Equal(t, "Some more text content", string(data))

	info, err = fsys.Stat("/root/Core/AnEmptyFolder")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	info, err = fsys.Stat("/root/Core/badlocation.php")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	ok, err := afero.Exists(fsys, "/root/plain/note.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	names, err := afero.ReadDir(fsys, "/root/Core/AbstractFactory")
	require.NoError(t, err)
	var got []string
	for _, n := range names {
		got = append(got, n.Name())
	}
	assert.Equal(t, []string{"Invalid.csv", "other.php", "test.php"}, got)
}

func TestSetupErrors(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := r.Setup(name, 0o755, nil)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	_, err := r.Setup("root", 0o755, Structure{"count": 3})
	assert.Error(t, err)

	_, err = r.Setup("root", 0o755, Structure{"a/b": "x"})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, ok := r.Lookup("root")
	assert.False(t, ok)
}

func TestRemount(t *testing.T) {
	r := NewRegistry()
	first, err := r.Setup("root", 0o755, Structure{"foo": Structure{"bar.txt": "bar"}})
	require.NoError(t, err)
	assert.False(t, first.Stale())

	second, err := r.Setup("root", 0o755, Structure{"Core": Structure{}})
	require.NoError(t, err)
	assert.True(t, first.Stale())
	assert.False(t, second.Stale())

	fsys, ok := r.Lookup("root")
	require.True(t, ok)
	assert.Same(t, second.Fs(), fsys)

	exists, err := afero.Exists(fsys, "/root/foo/bar.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	// the old tree is untouched
	exists, err = afero.Exists(first.Fs(), "/root/foo/bar.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	r.Unmount("root")
	assert.True(t, second.Stale())
	_, ok = r.Lookup("root")
	assert.False(t, ok)
}

func TestMount(t *testing.T) {
	r := NewRegistry()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/other/x.txt", []byte("x"), 0o644))

	dir, err := r.Mount("injected", fsys)
	require.NoError(t, err)

	info, err := fsys.Stat("/injected")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	got, ok := r.Directory("injected")
	require.True(t, ok)
	assert.Same(t, dir, got)

	_, err = r.Mount("", fsys)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestURLs(t *testing.T) {
	r := NewRegistry()
	dir, err := r.Setup("root", 0o755, nil)
	require.NoError(t, err)

	assert.Equal(t, "vfs://root", dir.URL(""))
	assert.Equal(t, "vfs://root/foo/bar.txt", dir.URL("foo/bar.txt"))
	assert.Equal(t, "vfs://root/foo", URL("/root/foo/"))

	got, sub, err := r.Resolve("vfs://root/foo/../bar.txt")
	require.NoError(t, err)
	assert.Same(t, dir, got)
	assert.Equal(t, "bar.txt", sub)

	_, sub, err = r.Resolve("vfs://root")
	require.NoError(t, err)
	assert.Equal(t, "", sub)

	_, _, err = r.Resolve("file:///root")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, _, err = r.Resolve("vfs://")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, _, err = r.Resolve("vfs://elsewhere/x")
	assert.ErrorIs(t, err, ErrNotMounted)
}

func TestDefaultRegistry(t *testing.T) {
	const name = "vfs-default-registry-test"
	dir, err := Setup(name, 0o755, Structure{"a.txt": "a"})
	require.NoError(t, err)
	t.Cleanup(func() { Unmount(name) })

	fsys, ok := Lookup(name)
	require.True(t, ok)
	assert.Same(t, dir.Fs(), fsys)

	got, sub, err := Resolve(dir.URL("a.txt"))
	require.NoError(t, err)
	assert.Same(t, dir, got)
	assert.Equal(t, "a.txt", sub)

	replacement := afero.NewMemMapFs()
	_, err = Mount(name, replacement)
	require.NoError(t, err)
	assert.True(t, dir.Stale())
	assert.Same(t, Default(), dir.registry)
}

func TestFileSystemView(t *testing.T) {
	r := NewRegistry()
	dir, err := r.Setup("root", 0o755, Structure{"b.txt": "bee", "a": Structure{"x.txt": "ex"}})
	require.NoError(t, err)

	fsys := dir.FileSystem()
	require.NoError(t, fsys.MkdirAll("/foo/bar", 0o755))
	f, err := fsys.Create("/foo/bar/tile1.txt")
	require.NoError(t, err)
	_, err = f.WriteString("FooBar")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := afero.ReadFile(dir.Fs(), "/root/foo/bar/tile1.txt")
	require.NoError(t, err)
	assert.Equal(t, "FooBar", string(data))

	data, err = fsys.ReadFile("a/x.txt")
	require.NoError(t, err)
	assert.Equal(t, "ex", string(data))

	entries, err := fsys.ReadDir("/")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a", "b.txt", "foo"}, names)

	sub, err := fsys.Sub("/a")
	require.NoError(t, err)
	data, err = fs.ReadFile(sub, "x.txt")
	require.NoError(t, err)
	assert.Equal(t, "ex", string(data))

	info, err := fsys.Stat("/b.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())

	require.NoError(t, fsys.Rename("/b.txt", "/c.txt"))
	require.NoError(t, fsys.Remove("/c.txt"))
	_, err = fsys.Stat("/c.txt")
	assert.True(t, os.IsNotExist(err))
}
