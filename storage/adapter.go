// Package storage defines the pluggable storage-driver contract used by the
// application-facing file storage layer: the Adapter interface drivers
// implement, the attribute records they return, per-call options, typed
// operation errors, a path-normalizing Filesystem facade, a boolean Disk
// surface and a Manager resolving named disks through registered drivers.
package storage

import (
	"io"
	"iter"
)

const (
	// OptionVisibility sets the visibility of a written file or created directory
	OptionVisibility = "visibility"
	// OptionDirectoryVisibility sets the visibility of implicitly created parents
	OptionDirectoryVisibility = "directory_visibility"
	// OptionRetainVisibility controls whether copies keep the source visibility
	OptionRetainVisibility = "retain_visibility"
)

// Adapter is implemented by every storage driver. Paths are relative to the
// adapter root and already normalized by the Filesystem facade.
//
// Operations report failure by returning an error; they never panic for
// ordinary I/O failure.
type Adapter interface {
	FileExists(path string) (bool, error)
	DirectoryExists(path string) (bool, error)

	Write(path string, contents []byte, opts Options) error
	WriteStream(path string, r io.Reader, opts Options) error
	Read(path string) ([]byte, error)
	ReadStream(path string) (io.ReadCloser, error)

	Delete(path string) error
	DeleteDirectory(path string) error
	CreateDirectory(path string, opts Options) error

	SetVisibility(path string, v Visibility) error
	Visibility(path string) (Attributes, error)
	MimeType(path string) (Attributes, error)
	LastModified(path string) (Attributes, error)
	FileSize(path string) (Attributes, error)

	// ListContents lazily yields the entries below path. A deep listing
	// descends into sub directories, yielding each directory before its
	// children.
	ListContents(path string, deep bool) iter.Seq2[Attributes, error]

	Move(source, destination string, opts Options) error
	Copy(source, destination string, opts Options) error
}

// Options carries per-call settings such as visibility
type Options map[string]any

// Get returns the option value or fallback when unset
func (o Options) Get(key string, fallback any) any {
	if v, ok := o[key]; ok && v != nil {
		return v
	}
	return fallback
}

// Visibility returns the requested visibility, if any
func (o Options) Visibility() (Visibility, bool) {
	return o.visibility(OptionVisibility)
}

// DirectoryVisibility returns the requested visibility for directories. It
// falls back to the plain visibility option.
func (o Options) DirectoryVisibility() (Visibility, bool) {
	if v, ok := o.visibility(OptionDirectoryVisibility); ok {
		return v, true
	}
	return o.Visibility()
}

// RetainVisibility reports whether copies should keep the source visibility.
// Defaults to true.
func (o Options) RetainVisibility() bool {
	b, ok := o.Get(OptionRetainVisibility, true).(bool)
	return !ok || b
}

func (o Options) visibility(key string) (Visibility, bool) {
	switch v := o[key].(type) {
	case Visibility:
		return v, v.Valid()
	case string:
		return Visibility(v), Visibility(v).Valid()
	}
	return "", false
}
