package storage

import (
	"errors"
	"io"
	"iter"
	"strings"
	"time"
	"unicode"
)

// ErrCorruptedPath is returned for paths containing control characters
var ErrCorruptedPath = errors.New("corrupted path detected")

// NormalizePath trims a path, converts backslashes, resolves "." and ".."
// segments and strips leading and trailing separators. Paths that would leave
// the storage root fail with ErrPathTraversal.
func NormalizePath(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	for _, r := range p {
		if unicode.IsControl(r) {
			return "", &OperationError{Kind: ErrCorruptedPath, Location: p}
		}
	}

	var parts []string
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(parts) == 0 {
				return "", &OperationError{Kind: ErrPathTraversal, Location: p}
			}
			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "/"), nil
}

// Filesystem is the application-facing view of an Adapter. It normalizes
// every path before handing it to the adapter.
type Filesystem struct {
	adapter Adapter
}

// NewFilesystem wraps adapter
func NewFilesystem(adapter Adapter) *Filesystem {
	return &Filesystem{adapter: adapter}
}

// Adapter returns the wrapped adapter
func (f *Filesystem) Adapter() Adapter {
	return f.adapter
}

func (f *Filesystem) FileExists(path string) (bool, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return false, err
	}
	return f.adapter.FileExists(p)
}

func (f *Filesystem) DirectoryExists(path string) (bool, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return false, err
	}
	return f.adapter.DirectoryExists(p)
}

// Has reports whether path exists as either a file or a directory
func (f *Filesystem) Has(path string) (bool, error) {
	ok, err := f.FileExists(path)
	if err != nil || ok {
		return ok, err
	}
	return f.DirectoryExists(path)
}

func (f *Filesystem) Write(path string, contents []byte, opts Options) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	return f.adapter.Write(p, contents, opts)
}

func (f *Filesystem) WriteStream(path string, r io.Reader, opts Options) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	return f.adapter.WriteStream(p, r, opts)
}

func (f *Filesystem) Read(path string) ([]byte, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}
	return f.adapter.Read(p)
}

func (f *Filesystem) ReadStream(path string) (io.ReadCloser, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}
	return f.adapter.ReadStream(p)
}

func (f *Filesystem) Delete(path string) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	return f.adapter.Delete(p)
}

func (f *Filesystem) DeleteDirectory(path string) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	return f.adapter.DeleteDirectory(p)
}

func (f *Filesystem) CreateDirectory(path string, opts Options) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	return f.adapter.CreateDirectory(p, opts)
}

func (f *Filesystem) SetVisibility(path string, v Visibility) error {
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}
	return f.adapter.SetVisibility(p, v)
}

func (f *Filesystem) Visibility(path string) (Visibility, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return "", err
	}
	attrs, err := f.adapter.Visibility(p)
	return attrs.Visibility, err
}

func (f *Filesystem) MimeType(path string) (string, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return "", err
	}
	attrs, err := f.adapter.MimeType(p)
	return attrs.MimeType, err
}

func (f *Filesystem) LastModified(path string) (time.Time, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return time.Time{}, err
	}
	attrs, err := f.adapter.LastModified(p)
	return attrs.LastModified, err
}

func (f *Filesystem) FileSize(path string) (int64, error) {
	p, err := NormalizePath(path)
	if err != nil {
		return 0, err
	}
	attrs, err := f.adapter.FileSize(p)
	return attrs.FileSize, err
}

func (f *Filesystem) Move(source, destination string, opts Options) error {
	src, err := NormalizePath(source)
	if err != nil {
		return err
	}
	dst, err := NormalizePath(destination)
	if err != nil {
		return err
	}
	return f.adapter.Move(src, dst, opts)
}

func (f *Filesystem) Copy(source, destination string, opts Options) error {
	src, err := NormalizePath(source)
	if err != nil {
		return err
	}
	dst, err := NormalizePath(destination)
	if err != nil {
		return err
	}
	return f.adapter.Copy(src, dst, opts)
}

// ListContents returns a lazy listing of the entries below path
func (f *Filesystem) ListContents(path string, deep bool) *Listing {
	p, err := NormalizePath(path)
	if err != nil {
		return &Listing{seq: func(yield func(Attributes, error) bool) {
			yield(Attributes{}, err)
		}}
	}
	return &Listing{seq: f.adapter.ListContents(p, deep)}
}

// Listing is a lazily evaluated directory listing. Nothing is read from the
// adapter until the listing is iterated.
type Listing struct {
	seq iter.Seq2[Attributes, error]
}

// Seq exposes the underlying sequence
func (l *Listing) Seq() iter.Seq2[Attributes, error] {
	return l.seq
}

// Filter returns a listing yielding only entries accepted by keep. Errors
// are always passed through.
func (l *Listing) Filter(keep func(Attributes) bool) *Listing {
	return &Listing{seq: func(yield func(Attributes, error) bool) {
		for attrs, err := range l.seq {
			if err == nil && !keep(attrs) {
				continue
			}
			if !yield(attrs, err) {
				return
			}
		}
	}}
}

// All drains the listing, stopping at the first error
func (l *Listing) All() ([]Attributes, error) {
	var out []Attributes
	for attrs, err := range l.seq {
		if err != nil {
			return out, err
		}
		out = append(out, attrs)
	}
	return out, nil
}

// Files drains the listing and returns file paths only
func (l *Listing) Files() ([]string, error) {
	return l.paths(Attributes.IsFile)
}

// Directories drains the listing and returns directory paths only
func (l *Listing) Directories() ([]string, error) {
	return l.paths(Attributes.IsDir)
}

func (l *Listing) paths(keep func(Attributes) bool) ([]string, error) {
	entries, err := l.Filter(keep).All()
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	return paths, err
}
