package local

import (
	"fmt"
	"os"

	"github.com/absfs/vfsadapter/storage"
)

// VisibilityConverter maps logical visibility to permission bits and back
type VisibilityConverter interface {
	ForFile(v storage.Visibility) os.FileMode
	ForDirectory(v storage.Visibility) os.FileMode
	InverseForFile(mode os.FileMode) storage.Visibility
	InverseForDirectory(mode os.FileMode) storage.Visibility
	DefaultForDirectories() os.FileMode
}

// PortableVisibilityConverter uses one fixed mode per entry type and
// visibility. Modes that match neither setting are reported as public.
type PortableVisibilityConverter struct {
	FilePublic                 os.FileMode
	FilePrivate                os.FileMode
	DirectoryPublic            os.FileMode
	DirectoryPrivate           os.FileMode
	DefaultDirectoryVisibility storage.Visibility
}

var _ VisibilityConverter = (*PortableVisibilityConverter)(nil)

// NewPortableVisibilityConverter returns the conventional 0644/0600 file and
// 0755/0700 directory modes, with private directories by default.
func NewPortableVisibilityConverter() *PortableVisibilityConverter {
	return &PortableVisibilityConverter{
		FilePublic:                 0o644,
		FilePrivate:                0o600,
		DirectoryPublic:            0o755,
		DirectoryPrivate:           0o700,
		DefaultDirectoryVisibility: storage.Private,
	}
}

// VisibilityFromMap builds a converter from a permission map of the form
// {"file": {"public": 0644, "private": 0600}, "dir": {...}}. Missing entries
// keep their conventional defaults.
func VisibilityFromMap(perms map[string]any, defaultForDirectories storage.Visibility) (*PortableVisibilityConverter, error) {
	c := NewPortableVisibilityConverter()
	if defaultForDirectories.Valid() {
		c.DefaultDirectoryVisibility = defaultForDirectories
	}

	targets := map[string]map[storage.Visibility]*os.FileMode{
		"file": {storage.Public: &c.FilePublic, storage.Private: &c.FilePrivate},
		"dir":  {storage.Public: &c.DirectoryPublic, storage.Private: &c.DirectoryPrivate},
	}
	for kind, modes := range targets {
		raw, ok := perms[kind]
		if !ok || raw == nil {
			continue
		}
		section, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("permissions.%s: expected a mapping, got %T", kind, raw)
		}
		for vis, dst := range modes {
			v, ok := section[string(vis)]
			if !ok || v == nil {
				continue
			}
			mode, err := FileMode(v)
			if err != nil {
				return nil, fmt.Errorf("permissions.%s.%s: %w", kind, vis, err)
			}
			*dst = mode
		}
	}
	return c, nil
}

func (c *PortableVisibilityConverter) ForFile(v storage.Visibility) os.FileMode {
	if v == storage.Private {
		return c.FilePrivate
	}
	return c.FilePublic
}

func (c *PortableVisibilityConverter) ForDirectory(v storage.Visibility) os.FileMode {
	if v == storage.Private {
		return c.DirectoryPrivate
	}
	return c.DirectoryPublic
}

func (c *PortableVisibilityConverter) InverseForFile(mode os.FileMode) storage.Visibility {
	switch mode.Perm() {
	case c.FilePublic:
		return storage.Public
	case c.FilePrivate:
		return storage.Private
	}
	return storage.Public
}

func (c *PortableVisibilityConverter) InverseForDirectory(mode os.FileMode) storage.Visibility {
	switch mode.Perm() {
	case c.DirectoryPublic:
		return storage.Public
	case c.DirectoryPrivate:
		return storage.Private
	}
	return storage.Public
}

func (c *PortableVisibilityConverter) DefaultForDirectories() os.FileMode {
	return c.ForDirectory(c.DefaultDirectoryVisibility)
}
