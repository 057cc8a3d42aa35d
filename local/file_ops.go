package local

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/absfs/vfsadapter/storage"
)

func (a *Adapter) fail(kind error, location string, err error) error {
	return storage.NewOperationError(kind, location, err)
}

// FileExists reports whether path is an existing regular file
func (a *Adapter) FileExists(path string) (bool, error) {
	return a.exists(path, false)
}

// DirectoryExists reports whether path is an existing directory
func (a *Adapter) DirectoryExists(path string) (bool, error) {
	return a.exists(path, true)
}

func (a *Adapter) exists(path string, dir bool) (bool, error) {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return false, a.fail(storage.ErrUnableToCheckExistence, location, err)
	}
	info, err := fsys.Stat(location)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, a.fail(storage.ErrUnableToCheckExistence, location, err)
	}
	return info.IsDir() == dir, nil
}

// Write stores contents at path, creating missing parent directories
func (a *Adapter) Write(path string, contents []byte, opts storage.Options) error {
	return a.WriteStream(path, bytes.NewReader(contents), opts)
}

// WriteStream stores everything read from r at path
func (a *Adapter) WriteStream(path string, r io.Reader, opts storage.Options) error {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToWriteFile, location, err)
	}

	if err := a.ensureParent(fsys, location, opts); err != nil {
		return a.fail(storage.ErrUnableToWriteFile, location, err)
	}

	vis, hasVis := opts.Visibility()
	perm := a.visibility.ForFile(storage.Public)
	if hasVis {
		perm = a.visibility.ForFile(vis)
	}

	f, err := fsys.OpenFile(location, os.O_WRONLY|os.O_CREATE|os.O_TRUNC|a.writeFlags, perm)
	if err != nil {
		return a.fail(storage.ErrUnableToWriteFile, location, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return a.fail(storage.ErrUnableToWriteFile, location, err)
	}
	if err := f.Close(); err != nil {
		return a.fail(storage.ErrUnableToWriteFile, location, err)
	}

	if hasVis {
		if err := fsys.Chmod(location, perm); err != nil {
			return a.fail(storage.ErrUnableToSetVisibility, location, err)
		}
	}
	return nil
}

// Read returns the contents of the file at path
func (a *Adapter) Read(path string) ([]byte, error) {
	rc, err := a.ReadStream(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, a.fail(storage.ErrUnableToReadFile, a.Location(path), err)
	}
	return data, nil
}

// ReadStream opens the file at path for reading
func (a *Adapter) ReadStream(path string) (io.ReadCloser, error) {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return nil, a.fail(storage.ErrUnableToReadFile, location, err)
	}
	f, err := fsys.Open(location)
	if err != nil {
		return nil, a.fail(storage.ErrUnableToReadFile, location, err)
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		err = ErrNotFile
	}
	if err != nil {
		f.Close()
		return nil, a.fail(storage.ErrUnableToReadFile, location, err)
	}
	return f, nil
}

// Delete removes the entry at path through the removal policy. Deleting a
// path that does not exist fails.
func (a *Adapter) Delete(path string) error {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToDeleteFile, location, err)
	}
	info, err := lstat(fsys, location)
	if err != nil {
		return a.fail(storage.ErrUnableToDeleteFile, location, err)
	}
	if !a.remove(fsys, location, info) {
		return a.fail(storage.ErrUnableToDeleteFile, location, nil)
	}
	return nil
}

// DeleteDirectory removes the directory at path and everything below it,
// children first.
func (a *Adapter) DeleteDirectory(path string) error {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToDeleteDirectory, location, err)
	}
	info, err := lstat(fsys, location)
	if err != nil {
		return a.fail(storage.ErrUnableToDeleteDirectory, location, err)
	}
	if !info.IsDir() {
		return a.fail(storage.ErrUnableToDeleteDirectory, location, ErrNotDirectory)
	}

	type entry struct {
		location string
		info     os.FileInfo
	}
	var entries []entry
	err = afero.Walk(fsys, location, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p != location {
			entries = append(entries, entry{location: p, info: info})
		}
		return nil
	})
	if err != nil {
		return a.fail(storage.ErrUnableToDeleteDirectory, location, err)
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if !a.remove(fsys, entries[i].location, entries[i].info) {
			return a.fail(storage.ErrUnableToDeleteDirectory, entries[i].location, nil)
		}
	}
	if !a.remove(fsys, location, info) {
		return a.fail(storage.ErrUnableToDeleteDirectory, location, nil)
	}
	return nil
}

func (a *Adapter) remove(fsys afero.Fs, location string, info os.FileInfo) bool {
	if a.removeEntry(fsys, location, info) {
		return true
	}
	a.logger.Debug("entry removal failed", "location", location, "dir", info.IsDir())
	return false
}

// CreateDirectory creates path and any missing parents. A visibility option
// is applied to the directory even when it already existed.
func (a *Adapter) CreateDirectory(path string, opts storage.Options) error {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToCreateDirectory, location, err)
	}

	vis, hasVis := opts.DirectoryVisibility()
	perm := a.visibility.DefaultForDirectories()
	if hasVis {
		perm = a.visibility.ForDirectory(vis)
	}
	if err := a.ensureDir(fsys, location, perm); err != nil {
		return a.fail(storage.ErrUnableToCreateDirectory, location, err)
	}
	if hasVis {
		if err := fsys.Chmod(location, perm|os.ModeDir); err != nil {
			return a.fail(storage.ErrUnableToSetVisibility, location, err)
		}
	}
	return nil
}

// ensureParent makes sure the directory holding location exists
func (a *Adapter) ensureParent(fsys afero.Fs, location string, opts storage.Options) error {
	perm := a.visibility.DefaultForDirectories()
	if vis, ok := opts.DirectoryVisibility(); ok {
		perm = a.visibility.ForDirectory(vis)
	}
	return a.ensureDir(fsys, filepath.Dir(location), perm)
}

// Move renames source to destination, creating the destination directory
func (a *Adapter) Move(source, destination string, opts storage.Options) error {
	src := a.Location(source)
	dst := a.Location(destination)
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToMoveFile, src, err)
	}
	if _, err := fsys.Stat(src); err != nil {
		return a.fail(storage.ErrUnableToMoveFile, src, err)
	}
	if err := a.ensureParent(fsys, dst, opts); err != nil {
		return a.fail(storage.ErrUnableToMoveFile, dst, err)
	}
	if err := fsys.Rename(src, dst); err != nil {
		return a.fail(storage.ErrUnableToMoveFile, src, err)
	}
	return nil
}

// Copy duplicates the file at source to destination. The copy keeps the
// source visibility unless a visibility option is given or retention is
// switched off.
func (a *Adapter) Copy(source, destination string, opts storage.Options) error {
	src := a.Location(source)
	dst := a.Location(destination)
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToCopyFile, src, err)
	}

	info, err := fsys.Stat(src)
	if err != nil {
		return a.fail(storage.ErrUnableToCopyFile, src, err)
	}
	if info.IsDir() {
		return a.fail(storage.ErrUnableToCopyFile, src, ErrNotFile)
	}

	perm := a.visibility.ForFile(storage.Public)
	if vis, ok := opts.Visibility(); ok {
		perm = a.visibility.ForFile(vis)
	} else if opts.RetainVisibility() {
		perm = info.Mode().Perm()
	}

	if err := a.ensureParent(fsys, dst, opts); err != nil {
		return a.fail(storage.ErrUnableToCopyFile, dst, err)
	}
	if err := a.copyFile(fsys, src, dst, perm); err != nil {
		return a.fail(storage.ErrUnableToCopyFile, src, err)
	}
	return nil
}

func (a *Adapter) copyFile(fsys afero.Fs, src, dst string, perm os.FileMode) error {
	srcFile, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|a.writeFlags, perm)
	if err != nil {
		return err
	}

	buf := make([]byte, a.copyBuffer)
	if _, err := io.CopyBuffer(dstFile, srcFile, buf); err != nil {
		dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return fsys.Chmod(dst, perm)
}
