package vfsadapter

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/absfs/vfsadapter/local"
	"github.com/absfs/vfsadapter/storage"
	"github.com/absfs/vfsadapter/vfs"
)

// VirtualAdapter is a storage.Adapter over an in-memory tree. Every operation
// is served by the embedded local adapter, which finds the tree by its mount
// name each time and therefore follows remounts.
type VirtualAdapter struct {
	*local.Adapter

	config   *Config
	root     *vfs.Directory
	registry *vfs.Registry
}

var _ storage.Adapter = (*VirtualAdapter)(nil)

type options struct {
	logger   *slog.Logger
	mime     local.MimeTypeDetector
	registry *vfs.Registry
}

// Option is a functional option for configuring a VirtualAdapter
type Option func(*options)

// WithLogger sets the logger used for swallowed failures and configuration
// notices.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMimeTypeDetector replaces the content based MIME detection
func WithMimeTypeDetector(d local.MimeTypeDetector) Option {
	return func(o *options) {
		o.mime = d
	}
}

// WithRegistry mounts the tree in r instead of the default registry
func WithRegistry(r *vfs.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// New resolves config, mounts a fresh tree named by dir_name and builds the
// adapter on top of it. A tree already mounted under that name is replaced.
func New(config map[string]any, opts ...Option) (*VirtualAdapter, error) {
	o := options{
		logger:   slog.New(slog.DiscardHandler),
		registry: vfs.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := ResolveConfig(config)
	for _, key := range cfg.Unknown() {
		o.logger.Debug("unrecognized option retained", "option", key)
	}

	name, err := cfg.DirName()
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}
	perm, err := cfg.DirPermissions()
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}
	structure, err := cfg.DirStructure()
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}
	perms, err := cfg.Permissions()
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}
	visibility, err := local.VisibilityFromMap(perms, storage.Private)
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}
	flags, err := cfg.WriteFlags()
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}
	links, err := cfg.LinkHandling()
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}

	root, err := o.registry.Setup(name, perm, structure)
	if err != nil {
		return nil, fmt.Errorf("vfs adapter: %w", err)
	}

	va := &VirtualAdapter{
		config:   cfg,
		root:     root,
		registry: o.registry,
	}

	localOpts := []local.Option{
		local.WithFsProvider(va.fs),
		local.WithVisibility(visibility),
		local.WithWriteFlags(flags),
		local.WithLinkHandling(links),
		local.WithDirectoryEnsurer(va.ensureDirectory),
		local.WithEntryRemover(va.removeEntry),
		local.WithLogger(o.logger),
	}
	if o.mime != nil {
		localOpts = append(localOpts, local.WithMimeTypeDetector(o.mime))
	}

	va.Adapter, err = local.New(root.Location(), localOpts...)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("virtual root mounted", "location", va.URL(), "perm", perm)
	return va, nil
}

// fs returns the tree currently mounted under the root name
func (va *VirtualAdapter) fs() (afero.Fs, error) {
	fsys, ok := va.registry.Lookup(va.root.Name())
	if !ok {
		return nil, fmt.Errorf("%s: %w", va.root.Name(), vfs.ErrNotMounted)
	}
	return fsys, nil
}

// isRoot reports whether location is the top level directory of the tree
func (va *VirtualAdapter) isRoot(location string) bool {
	return strings.Trim(location, "/") == va.root.Name()
}

// ensureDirectory treats the root as always present
func (va *VirtualAdapter) ensureDirectory(fsys afero.Fs, location string, perm os.FileMode) error {
	if va.isRoot(location) {
		return nil
	}
	return local.EnsureDirectory(fsys, location, perm)
}

// removeEntry removes location by its own path without resolving links.
// Directories must be empty. Failures surface only as false; the local
// adapter logs them.
func (va *VirtualAdapter) removeEntry(fsys afero.Fs, location string, info os.FileInfo) bool {
	if info.IsDir() {
		return local.RemoveDirectory(fsys, location)
	}
	return local.Unlink(fsys, location)
}

// CreateDirectory creates path below the root. Creating the root itself
// succeeds without touching the tree.
func (va *VirtualAdapter) CreateDirectory(path string, opts storage.Options) error {
	if va.isRoot(va.Location(path)) {
		return nil
	}
	return va.Adapter.CreateDirectory(path, opts)
}

// Config returns the resolved configuration
func (va *VirtualAdapter) Config() *Config {
	return va.config
}

// DefaultConfig returns a fresh copy of the default configuration
func (va *VirtualAdapter) DefaultConfig() map[string]any {
	return DefaultConfig()
}

// VirtualRoot returns the handle of the tree mounted at construction
func (va *VirtualAdapter) VirtualRoot() *vfs.Directory {
	return va.root
}

// URL returns the vfs:// URL of the root
func (va *VirtualAdapter) URL() string {
	return va.root.URL("")
}
