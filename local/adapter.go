// Package local implements a local-filesystem-style storage adapter on top of
// any afero.Fs. Paths are resolved below a root location, visibility is
// mapped to permission bits by a VisibilityConverter, and the two policies
// that depend on the backing filesystem (ensuring a directory exists and
// removing a single entry) can be replaced with options.
package local

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/absfs/vfsadapter/storage"
)

// EnsureDirectoryFunc creates location, and any missing parents, with perm
// unless it already exists.
type EnsureDirectoryFunc func(fsys afero.Fs, location string, perm os.FileMode) error

// RemoveEntryFunc removes a single file or empty directory at location and
// reports whether it succeeded. Implementations must not return low-level
// errors to the caller.
type RemoveEntryFunc func(fsys afero.Fs, location string, info os.FileInfo) bool

// ErrNotDirectory is returned when a directory operation meets a file
var ErrNotDirectory = errors.New("not a directory")

// ErrNotFile is returned when a file operation meets a directory
var ErrNotFile = errors.New("not a file")

// Adapter is a storage.Adapter backed by an afero.Fs
type Adapter struct {
	root        string
	provider    func() (afero.Fs, error)
	visibility  VisibilityConverter
	writeFlags  int
	links       LinkHandling
	mime        MimeTypeDetector
	ensureDir   EnsureDirectoryFunc
	removeEntry RemoveEntryFunc
	copyBuffer  int
	logger      *slog.Logger
}

var _ storage.Adapter = (*Adapter)(nil)

// Option is a functional option for configuring an Adapter
type Option func(*Adapter)

// WithFs uses fsys for every operation
func WithFs(fsys afero.Fs) Option {
	return func(a *Adapter) {
		a.provider = func() (afero.Fs, error) { return fsys, nil }
	}
}

// WithFsProvider looks the filesystem up on every operation. This lets the
// adapter follow a backing filesystem that gets replaced after construction.
func WithFsProvider(provider func() (afero.Fs, error)) Option {
	return func(a *Adapter) {
		a.provider = provider
	}
}

// WithVisibility sets the visibility converter
func WithVisibility(c VisibilityConverter) Option {
	return func(a *Adapter) {
		a.visibility = c
	}
}

// WithWriteFlags ORs extra os.OpenFile flags into every write
func WithWriteFlags(flags int) Option {
	return func(a *Adapter) {
		a.writeFlags = flags
	}
}

// WithLinkHandling sets how listings treat symbolic links
func WithLinkHandling(l LinkHandling) Option {
	return func(a *Adapter) {
		a.links = l
	}
}

// WithMimeTypeDetector replaces the content based MIME detection
func WithMimeTypeDetector(d MimeTypeDetector) Option {
	return func(a *Adapter) {
		a.mime = d
	}
}

// WithDirectoryEnsurer replaces the policy used to create missing directories
func WithDirectoryEnsurer(f EnsureDirectoryFunc) Option {
	return func(a *Adapter) {
		a.ensureDir = f
	}
}

// WithEntryRemover replaces the policy used to remove single entries
func WithEntryRemover(f RemoveEntryFunc) Option {
	return func(a *Adapter) {
		a.removeEntry = f
	}
}

// WithCopyBufferSize sets the buffer size used by Copy
func WithCopyBufferSize(size int) Option {
	return func(a *Adapter) {
		a.copyBuffer = size
	}
}

// WithLogger sets the logger for swallowed low-level failures
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an adapter rooted at location. The root directory is created
// through the directory policy if it does not exist yet.
func New(location string, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		root:        filepath.Clean(location),
		provider:    func() (afero.Fs, error) { return afero.NewOsFs(), nil },
		visibility:  NewPortableVisibilityConverter(),
		links:       DisallowLinks,
		mime:        ContentMimeTypeDetector{},
		ensureDir:   EnsureDirectory,
		removeEntry: RemoveEntry,
		copyBuffer:  32 * 1024, // default 32KB
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}

	fsys, err := a.provider()
	if err != nil {
		return nil, fmt.Errorf("local adapter %s: %w", a.root, err)
	}
	if err := a.ensureDir(fsys, a.root, a.visibility.DefaultForDirectories()); err != nil {
		return nil, storage.NewOperationError(storage.ErrUnableToCreateDirectory, a.root, err)
	}
	return a, nil
}

// Root returns the root location of the adapter
func (a *Adapter) Root() string {
	return a.root
}

// Fs returns the filesystem currently backing the adapter
func (a *Adapter) Fs() (afero.Fs, error) {
	return a.provider()
}

// LinkHandling returns the configured link policy
func (a *Adapter) LinkHandling() LinkHandling {
	return a.links
}

// WriteFlags returns the extra flags used for writes
func (a *Adapter) WriteFlags() int {
	return a.writeFlags
}

// VisibilityConverter returns the configured visibility converter
func (a *Adapter) VisibilityConverter() VisibilityConverter {
	return a.visibility
}

// Location maps a root-relative path to a location on the backing filesystem
func (a *Adapter) Location(path string) string {
	path = strings.Trim(filepath.FromSlash(path), string(filepath.Separator))
	if path == "" {
		return a.root
	}
	return filepath.Join(a.root, path)
}

// relative maps a location back to a root-relative, slash separated path
func (a *Adapter) relative(location string) string {
	rel := strings.TrimPrefix(filepath.Clean(location), a.root)
	return filepath.ToSlash(strings.TrimLeft(rel, string(filepath.Separator)))
}

// EnsureDirectory is the default directory policy. It succeeds when location
// already is a directory and otherwise creates it with all parents.
func EnsureDirectory(fsys afero.Fs, location string, perm os.FileMode) error {
	info, err := fsys.Stat(location)
	if err == nil {
		if !info.IsDir() {
			return &os.PathError{Op: "mkdir", Path: location, Err: ErrNotDirectory}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return fsys.MkdirAll(location, perm)
}

// RemoveEntry is the default removal policy. Directories and regular files are
// removed by their real path; symbolic links are removed themselves.
func RemoveEntry(fsys afero.Fs, location string, info os.FileInfo) bool {
	if isLink(info) {
		return Unlink(fsys, location)
	}
	resolved, err := realPath(fsys, location)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return RemoveDirectory(fsys, resolved)
	}
	return Unlink(fsys, resolved)
}

// RemoveDirectory removes an empty directory. Like rmdir it refuses to remove
// a directory that still has entries. Errors are swallowed.
func RemoveDirectory(fsys afero.Fs, location string) bool {
	f, err := fsys.Open(location)
	if err != nil {
		return false
	}
	names, err := f.Readdirnames(-1)
	f.Close()
	if err != nil || len(names) > 0 {
		return false
	}
	return fsys.Remove(location) == nil
}

// Unlink removes a single non-directory entry. Errors are swallowed.
func Unlink(fsys afero.Fs, location string) bool {
	return fsys.Remove(location) == nil
}
