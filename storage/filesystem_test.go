package storage_test

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absfs/vfsadapter/local"
	"github.com/absfs/vfsadapter/storage"
)

func newFilesystem(t *testing.T) *storage.Filesystem {
	t.Helper()
	a, err := local.New("/disk", local.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)
	return storage.NewFilesystem(a)
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"  foo/bar.txt  ", "foo/bar.txt"},
		{"/foo//bar/", "foo/bar"},
		{`foo\bar\baz.txt`, "foo/bar/baz.txt"},
		{"./foo/./bar", "foo/bar"},
		{"foo/../bar", "bar"},
		{"foo/bar/../../baz", "baz"},
		{"with space/file name.txt", "with space/file name.txt"},
	}
	for _, tt := range tests {
		got, err := storage.NormalizePath(tt.in)
		require.NoError(t, err, "path %q", tt.in)
		assert.Equal(t, tt.want, got, "path %q", tt.in)
	}
}

func TestNormalizePathRejects(t *testing.T) {
	for _, p := range []string{"..", "../etc/passwd", "foo/../../bar"} {
		_, err := storage.NormalizePath(p)
		assert.ErrorIs(t, err, storage.ErrPathTraversal, "path %q", p)
	}

	_, err := storage.NormalizePath("foo\x00bar")
	assert.ErrorIs(t, err, storage.ErrCorruptedPath)
}

func TestOperationError(t *testing.T) {
	cause := errors.New("disk full")
	err := storage.NewOperationError(storage.ErrUnableToWriteFile, "/disk/a.txt", cause)

	assert.EqualError(t, err, "unable to write file at location: /disk/a.txt. disk full")
	assert.ErrorIs(t, err, storage.ErrUnableToWriteFile)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, storage.ErrUnableToReadFile)

	bare := storage.NewOperationError(storage.ErrUnableToDeleteFile, "x", nil)
	assert.EqualError(t, bare, "unable to delete file at location: x")
	assert.ErrorIs(t, bare, storage.ErrUnableToDeleteFile)
}

func TestFilesystemNormalizesPaths(t *testing.T) {
	fs := newFilesystem(t)

	require.NoError(t, fs.Write(" /docs//a.txt ", []byte("a"), nil))

	ok, err := fs.Has("docs/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fs.Has("docs")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = fs.Has("docs/missing.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := fs.Read(`docs\a.txt`)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	err = fs.Write("../escape.txt", []byte("x"), nil)
	assert.ErrorIs(t, err, storage.ErrPathTraversal)

	_, err = fs.Read("docs/../../a.txt")
	assert.ErrorIs(t, err, storage.ErrPathTraversal)
}

func TestFilesystemMetadata(t *testing.T) {
	fs := newFilesystem(t)
	require.NoError(t, fs.Write("a.txt", []byte("hello"), storage.Options{storage.OptionVisibility: "private"}))

	size, err := fs.FileSize("a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	vis, err := fs.Visibility("a.txt")
	require.NoError(t, err)
	assert.Equal(t, storage.Private, vis)

	mt, err := fs.MimeType("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)

	ts, err := fs.LastModified("a.txt")
	require.NoError(t, err)
	assert.False(t, ts.IsZero())
}

func TestListing(t *testing.T) {
	fs := newFilesystem(t)
	for _, p := range []string{"a/1.txt", "a/b/2.txt", "c.txt"} {
		require.NoError(t, fs.Write(p, []byte(p), nil))
	}

	all, err := fs.ListContents("", true).All()
	require.NoError(t, err)
	assert.Len(t, all, 5)

	files, err := fs.ListContents("/", true).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.txt", "a/b/2.txt", "c.txt"}, files)

	dirs, err := fs.ListContents("", true).Directories()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/b"}, dirs)

	shallow, err := fs.ListContents("a", false).Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1.txt"}, shallow)

	big, err := fs.ListContents("", true).Filter(func(a storage.Attributes) bool {
		return a.IsFile() && a.FileSize > 5
	}).All()
	require.NoError(t, err)
	require.Len(t, big, 2)

	_, err = fs.ListContents("../up", true).All()
	assert.ErrorIs(t, err, storage.ErrPathTraversal)
}

func TestListingIsLazy(t *testing.T) {
	fs := newFilesystem(t)
	for _, p := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, fs.Write(p, []byte(p), nil))
	}

	listing := fs.ListContents("", false)

	// entries written after the listing was built are still seen
	require.NoError(t, fs.Write("d.txt", []byte("d"), nil))

	var seen []string
	for attrs, err := range listing.Seq() {
		require.NoError(t, err)
		seen = append(seen, attrs.Path)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, seen)

	files, err := listing.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "d.txt"}, files)
}
