package local

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/absfs/vfsadapter/storage"
)

// DriverName is the manager driver name of the host filesystem adapter
const DriverName = "local"

// Configuration keys understood by OptionsFromConfig
const (
	KeyRoot                = "root"
	KeyPermissions         = "permissions"
	KeyLinkHandling        = "link_handling"
	KeyWriteFlags          = "write_flags"
	KeyDirectoryVisibility = "directory_visibility"
)

// ErrMissingRoot is returned when a local disk has no root configured
var ErrMissingRoot = errors.New("local disk needs a root")

// OptionsFromConfig translates the permission, link and write flag settings
// of a disk configuration into adapter options. Absent keys keep the adapter
// defaults.
func OptionsFromConfig(cfg map[string]any) ([]Option, error) {
	var opts []Option

	dirVis := storage.Private
	if raw, ok := cfg[KeyDirectoryVisibility]; ok && raw != nil {
		s, _ := raw.(string)
		dirVis = storage.Visibility(s)
		if !dirVis.Valid() {
			return nil, fmt.Errorf("%s: invalid visibility %v", KeyDirectoryVisibility, raw)
		}
	}

	perms := map[string]any{}
	if raw, ok := cfg[KeyPermissions]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: expected a mapping, got %T", KeyPermissions, raw)
		}
		perms = m
	}
	converter, err := VisibilityFromMap(perms, dirVis)
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithVisibility(converter))

	if raw, ok := cfg[KeyLinkHandling]; ok && raw != nil {
		l, err := ParseLinkHandling(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithLinkHandling(l))
	}

	if raw, ok := cfg[KeyWriteFlags]; ok && raw != nil {
		flags, err := Int(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyWriteFlags, err)
		}
		opts = append(opts, WithWriteFlags(int(flags)))
	}
	return opts, nil
}

// Factory builds a host filesystem adapter from a disk configuration
func Factory(cfg map[string]any, logger *slog.Logger) (storage.Adapter, error) {
	root, _ := cfg[KeyRoot].(string)
	if root == "" {
		return nil, ErrMissingRoot
	}
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("local disk: %w", err)
	}
	opts = append(opts, WithLogger(logger))
	return New(root, opts...)
}

// Register makes the local driver available to m
func Register(m *storage.Manager) {
	m.Extend(DriverName, Factory)
}
