package vfs

import (
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/absfs/absfs"
	"github.com/spf13/afero"
)

// filer exposes a mount as an absfs.Filer rooted at its top level directory
type filer struct {
	fs afero.Fs
}

// Ensure filer implements absfs.Filer interface at compile time
var _ absfs.Filer = (*filer)(nil)

// FileSystem returns an absfs.FileSystem view of the mount. Paths are
// relative to the top level directory, so "/" is the mount root.
//
// Example:
//
//	dir, _ := vfs.Setup("root", 0o755, nil)
//	fsys := dir.FileSystem()
//	fsys.MkdirAll("/foo/bar", 0o755)
//	f, err := fsys.Create("/foo/bar/tile1.txt")
func (d *Directory) FileSystem() absfs.FileSystem {
	return absfs.ExtendFiler(d.filer())
}

func (d *Directory) filer() *filer {
	return &filer{fs: afero.NewBasePathFs(d.fs, d.Location())}
}

func cleanPath(name string) string {
	return path.Clean("/" + name)
}

// OpenFile implements absfs.Filer
func (f *filer) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	file, err := f.fs.OpenFile(cleanPath(name), flag, perm)
	if err != nil {
		return nil, err
	}
	return absfs.ExtendSeekable(file), nil
}

// Mkdir implements absfs.Filer
func (f *filer) Mkdir(name string, perm os.FileMode) error {
	return f.fs.Mkdir(cleanPath(name), perm)
}

// Remove implements absfs.Filer
func (f *filer) Remove(name string) error {
	return f.fs.Remove(cleanPath(name))
}

// Rename implements absfs.Filer
func (f *filer) Rename(oldpath, newpath string) error {
	return f.fs.Rename(cleanPath(oldpath), cleanPath(newpath))
}

// Stat implements absfs.Filer
func (f *filer) Stat(name string) (os.FileInfo, error) {
	return f.fs.Stat(cleanPath(name))
}

// Chmod implements absfs.Filer
func (f *filer) Chmod(name string, mode os.FileMode) error {
	return f.fs.Chmod(cleanPath(name), mode)
}

// Chtimes implements absfs.Filer
func (f *filer) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return f.fs.Chtimes(cleanPath(name), atime, mtime)
}

// Chown implements absfs.Filer
func (f *filer) Chown(name string, uid, gid int) error {
	return f.fs.Chown(cleanPath(name), uid, gid)
}

// ReadDir implements absfs.Filer. Entries are sorted by name.
func (f *filer) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := afero.ReadDir(f.fs, cleanPath(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

// ReadFile implements absfs.Filer
func (f *filer) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(f.fs, cleanPath(name))
}

// Sub implements absfs.Filer
func (f *filer) Sub(dir string) (fs.FS, error) {
	return absfs.FilerToFS(f, cleanPath(dir))
}

// Separator returns the path separator (always forward slash for virtual paths)
func (f *filer) Separator() uint8 {
	return '/'
}

// ListSeparator returns the path list separator (always colon for virtual paths)
func (f *filer) ListSeparator() uint8 {
	return ':'
}
