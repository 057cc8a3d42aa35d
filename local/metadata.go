package local

import (
	"os"

	"github.com/spf13/afero"

	"github.com/absfs/vfsadapter/storage"
)

// stat looks path up and returns its location and file info, failing with
// ErrUnableToRetrieveMetadata.
func (a *Adapter) stat(path string) (afero.Fs, string, os.FileInfo, error) {
	location := a.Location(path)
	fsys, err := a.provider()
	if err != nil {
		return nil, location, nil, a.fail(storage.ErrUnableToRetrieveMetadata, location, err)
	}
	info, err := fsys.Stat(location)
	if err != nil {
		return nil, location, nil, a.fail(storage.ErrUnableToRetrieveMetadata, location, err)
	}
	return fsys, location, info, nil
}

// attributes converts info into storage attributes with visibility filled in
func (a *Adapter) attributes(location string, info os.FileInfo) storage.Attributes {
	attrs := storage.FromFileInfo(a.relative(location), info)
	if info.IsDir() {
		attrs.Visibility = a.visibility.InverseForDirectory(info.Mode())
	} else {
		attrs.Visibility = a.visibility.InverseForFile(info.Mode())
	}
	return attrs
}

// SetVisibility changes the permission bits of path
func (a *Adapter) SetVisibility(path string, v storage.Visibility) error {
	location := a.Location(path)
	if !v.Valid() {
		return a.fail(storage.ErrUnableToSetVisibility, location, os.ErrInvalid)
	}
	fsys, err := a.provider()
	if err != nil {
		return a.fail(storage.ErrUnableToSetVisibility, location, err)
	}
	info, err := fsys.Stat(location)
	if err != nil {
		return a.fail(storage.ErrUnableToSetVisibility, location, err)
	}

	mode := a.visibility.ForFile(v)
	if info.IsDir() {
		mode = a.visibility.ForDirectory(v) | os.ModeDir
	}
	if err := fsys.Chmod(location, mode); err != nil {
		return a.fail(storage.ErrUnableToSetVisibility, location, err)
	}
	return nil
}

// Visibility returns the attributes of path with its visibility
func (a *Adapter) Visibility(path string) (storage.Attributes, error) {
	_, location, info, err := a.stat(path)
	if err != nil {
		return storage.Attributes{}, err
	}
	return a.attributes(location, info), nil
}

// LastModified returns the attributes of path with its modification time
func (a *Adapter) LastModified(path string) (storage.Attributes, error) {
	return a.Visibility(path)
}

// FileSize returns the attributes of the file at path with its size
func (a *Adapter) FileSize(path string) (storage.Attributes, error) {
	_, location, info, err := a.stat(path)
	if err != nil {
		return storage.Attributes{}, err
	}
	if info.IsDir() {
		return storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, ErrNotFile)
	}
	return a.attributes(location, info), nil
}

// MimeType returns the attributes of the file at path with its detected MIME
// type.
func (a *Adapter) MimeType(path string) (storage.Attributes, error) {
	fsys, location, info, err := a.stat(path)
	if err != nil {
		return storage.Attributes{}, err
	}
	if info.IsDir() {
		return storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, ErrNotFile)
	}

	f, err := fsys.Open(location)
	if err != nil {
		return storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, err)
	}
	defer f.Close()

	mt, err := a.mime.DetectMimeType(location, f)
	if err != nil {
		return storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, err)
	}
	if mt == "" {
		return storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, nil)
	}

	attrs := a.attributes(location, info)
	attrs.MimeType = mt
	return attrs, nil
}
