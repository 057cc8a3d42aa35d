// Package vfs keeps named in-memory directory trees. Each mount is an
// afero.MemMapFs holding a single top level directory named after the mount.
// Setting up a name again replaces the previous tree, so handles obtained
// before a remount keep pointing at the old, no longer registered tree.
//
// Mounts are addressed with vfs:// URLs:
//
//	dir, _ := vfs.Setup("root", 0o755, vfs.Structure{
//	    "Core": vfs.Structure{"AbstractFactory": vfs.Structure{"test.php": "<?php"}},
//	})
//	dir.URL("Core/AbstractFactory") // vfs://root/Core/AbstractFactory
package vfs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Scheme is the URL scheme of mounted trees
const Scheme = "vfs"

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

var (
	// ErrInvalidName is returned for mount names that are empty or contain a
	// path separator.
	ErrInvalidName = errors.New("invalid mount name")

	// ErrNotMounted is returned when no tree is mounted under a name
	ErrNotMounted = errors.New("not mounted")

	// ErrInvalidURL is returned by Resolve for URLs outside the vfs scheme
	ErrInvalidURL = errors.New("invalid vfs url")
)

// Structure describes a tree to seed a mount with. Nested Structure (or
// map[string]any) values become directories, string and []byte values become
// files with that content.
type Structure map[string]any

// Directory is a handle on a mounted tree
type Directory struct {
	name     string
	fs       afero.Fs
	registry *Registry
}

// Registry maps mount names to trees. The package level functions use a
// shared default registry.
type Registry struct {
	mu     sync.RWMutex
	mounts map[string]*Directory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{mounts: make(map[string]*Directory)}
}

var defaultRegistry = NewRegistry()

// Default returns the shared registry used by the package level functions
func Default() *Registry {
	return defaultRegistry
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Setup mounts a fresh tree under name. The top level directory gets perm
// and structure is seeded below it. Any tree previously mounted under name is
// replaced.
func (r *Registry) Setup(name string, perm os.FileMode, structure Structure) (*Directory, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	fsys := afero.NewMemMapFs()
	root := "/" + name
	if err := fsys.Mkdir(root, perm); err != nil {
		return nil, fmt.Errorf("vfs setup %s: %w", name, err)
	}
	if err := seed(fsys, root, structure); err != nil {
		return nil, fmt.Errorf("vfs setup %s: %w", name, err)
	}

	return r.mount(name, fsys), nil
}

// Mount registers an externally built tree under name, replacing any
// previous one. The top level directory is created if fsys lacks it.
func (r *Registry) Mount(name string, fsys afero.Fs) (*Directory, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll("/"+name, dirPerm); err != nil {
		return nil, fmt.Errorf("vfs mount %s: %w", name, err)
	}
	return r.mount(name, fsys), nil
}

func (r *Registry) mount(name string, fsys afero.Fs) *Directory {
	d := &Directory{name: name, fs: fsys, registry: r}
	r.mu.Lock()
	r.mounts[name] = d
	r.mu.Unlock()
	return d
}

// Lookup returns the tree currently mounted under name
func (r *Registry) Lookup(name string) (afero.Fs, bool) {
	d, ok := r.Directory(name)
	if !ok {
		return nil, false
	}
	return d.fs, true
}

// Directory returns the handle currently mounted under name
func (r *Registry) Directory(name string) (*Directory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.mounts[name]
	return d, ok
}

// Unmount drops the tree mounted under name
func (r *Registry) Unmount(name string) {
	r.mu.Lock()
	delete(r.mounts, name)
	r.mu.Unlock()
}

// Resolve splits a vfs:// URL into the mounted directory and the path below
// it.
func (r *Registry) Resolve(url string) (*Directory, string, error) {
	rest, ok := strings.CutPrefix(url, Scheme+"://")
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	name, sub, _ := strings.Cut(rest, "/")
	if name == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	d, ok := r.Directory(name)
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", name, ErrNotMounted)
	}
	return d, strings.Trim(path.Clean("/"+sub), "/"), nil
}

// Setup mounts a fresh tree in the default registry
func Setup(name string, perm os.FileMode, structure Structure) (*Directory, error) {
	return defaultRegistry.Setup(name, perm, structure)
}

// Mount registers fsys in the default registry
func Mount(name string, fsys afero.Fs) (*Directory, error) {
	return defaultRegistry.Mount(name, fsys)
}

// Lookup finds a tree in the default registry
func Lookup(name string) (afero.Fs, bool) {
	return defaultRegistry.Lookup(name)
}

// Unmount drops a tree from the default registry
func Unmount(name string) {
	defaultRegistry.Unmount(name)
}

// Resolve resolves a vfs:// URL against the default registry
func Resolve(url string) (*Directory, string, error) {
	return defaultRegistry.Resolve(url)
}

// URL builds a vfs:// URL from a mount relative path such as "root/a/b"
func URL(p string) string {
	return Scheme + "://" + strings.TrimLeft(path.Clean("/"+p), "/")
}

// Name returns the mount name, which is also the top level directory name
func (d *Directory) Name() string {
	return d.name
}

// Location returns the absolute path of the top level directory inside Fs
func (d *Directory) Location() string {
	return "/" + d.name
}

// Fs returns the tree backing the mount
func (d *Directory) Fs() afero.Fs {
	return d.fs
}

// URL returns the vfs:// URL of p below the mount
func (d *Directory) URL(p string) string {
	return URL(path.Join(d.name, p))
}

// Stale reports whether the name has since been remounted or unmounted
func (d *Directory) Stale() bool {
	current, ok := d.registry.Directory(d.name)
	return !ok || current != d
}

// seed creates structure below dir in sorted order
func seed(fsys afero.Fs, dir string, structure map[string]any) error {
	names := make([]string, 0, len(structure))
	for name := range structure {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := validName(name); err != nil {
			return err
		}
		p := path.Join(dir, name)
		switch v := structure[name].(type) {
		case Structure:
			if err := mkdirSeed(fsys, p, v); err != nil {
				return err
			}
		case map[string]any:
			if err := mkdirSeed(fsys, p, v); err != nil {
				return err
			}
		case string:
			if err := afero.WriteFile(fsys, p, []byte(v), filePerm); err != nil {
				return err
			}
		case []byte:
			if err := afero.WriteFile(fsys, p, v, filePerm); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unsupported structure value %T", p, v)
		}
	}
	return nil
}

func mkdirSeed(fsys afero.Fs, p string, children map[string]any) error {
	if err := fsys.Mkdir(p, dirPerm); err != nil {
		return err
	}
	return seed(fsys, p, children)
}
