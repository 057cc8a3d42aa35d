package vfsadapter

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/iancoleman/strcase"

	"github.com/absfs/vfsadapter/local"
	"github.com/absfs/vfsadapter/vfs"
)

// Recognized configuration keys
const (
	OptionDirName        = "dir_name"
	OptionDirPermissions = "dir_permissions"
	OptionDirStructure   = "dir_structure"
	OptionWriteFlags     = "write_flags"
	OptionLinkHandling   = "link_handling"
	OptionPermissions    = "permissions"
)

// ErrInvalidField is matched by every *FieldError
var ErrInvalidField = errors.New("invalid field")

// FieldError reports a configuration lookup for a name that does not
// resolve to a value.
type FieldError struct {
	Name string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is not a valid field.", e.Name)
}

// Is makes errors.Is(err, ErrInvalidField) match
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidField
}

func defaults() map[string]any {
	return map[string]any{
		OptionDirName:        "root",
		OptionDirPermissions: 0o755,
		OptionDirStructure:   map[string]any{},
		OptionWriteFlags:     0,
		OptionLinkHandling:   local.DisallowLinks,
		OptionPermissions: map[string]any{
			"file": map[string]any{
				"public":  0o644,
				"private": 0o600,
			},
			"dir": map[string]any{
				"public":  0o755,
				"private": 0o700,
			},
		},
	}
}

// aliases maps both spellings of every recognized key to the canonical key
var aliases = func() map[string]string {
	m := make(map[string]string)
	for key := range defaults() {
		m[key] = key
		m[strcase.ToLowerCamel(key)] = key
	}
	return m
}()

// DefaultConfig returns a fresh copy of the default configuration
func DefaultConfig() map[string]any {
	return defaults()
}

// Config is a resolved, read-only configuration
type Config struct {
	values map[string]any
}

// ResolveConfig merges user over the defaults. Nested mappings are merged key
// by key; any other value replaces the default wholesale. Neither input is
// modified.
func ResolveConfig(user map[string]any) *Config {
	return &Config{values: merge(defaults(), user)}
}

// Get returns the value of a configuration key given in snake_case or
// camelCase. Names that are not recognized are looked up by their snake_case
// form, so extra keys passed at construction stay reachable. A name that
// resolves to nothing yields a *FieldError.
func (c *Config) Get(name string) (any, error) {
	key, ok := aliases[name]
	if !ok {
		key = strcase.ToSnake(name)
	}
	v, ok := c.values[key]
	if !ok || v == nil {
		return nil, &FieldError{Name: name}
	}
	return clone(v), nil
}

// Map returns a copy of every resolved value
func (c *Config) Map() map[string]any {
	return clone(c.values).(map[string]any)
}

// Unknown returns the sorted keys that are not recognized options
func (c *Config) Unknown() []string {
	var out []string
	for key := range c.values {
		if _, ok := aliases[key]; !ok {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

// DirName returns the name of the virtual root directory
func (c *Config) DirName() (string, error) {
	v, err := c.Get(OptionDirName)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: expected a non-empty string, got %v", OptionDirName, v)
	}
	return s, nil
}

// DirPermissions returns the permission bits of the virtual root
func (c *Config) DirPermissions() (os.FileMode, error) {
	v, err := c.Get(OptionDirPermissions)
	if err != nil {
		return 0, err
	}
	mode, err := local.FileMode(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", OptionDirPermissions, err)
	}
	return mode, nil
}

// DirStructure returns the tree the virtual root is seeded with
func (c *Config) DirStructure() (vfs.Structure, error) {
	v, err := c.Get(OptionDirStructure)
	if err != nil {
		return nil, err
	}
	m, ok := mapping(v)
	if !ok {
		return nil, fmt.Errorf("%s: expected a mapping, got %T", OptionDirStructure, v)
	}
	return vfs.Structure(m), nil
}

// WriteFlags returns the extra flags OR-ed into every write
func (c *Config) WriteFlags() (int, error) {
	v, err := c.Get(OptionWriteFlags)
	if err != nil {
		return 0, err
	}
	n, err := local.Int(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", OptionWriteFlags, err)
	}
	return int(n), nil
}

// LinkHandling returns the symbolic link policy
func (c *Config) LinkHandling() (local.LinkHandling, error) {
	v, err := c.Get(OptionLinkHandling)
	if err != nil {
		return 0, err
	}
	if l, ok := v.(local.LinkHandling); ok {
		return l, nil
	}
	l, err := local.ParseLinkHandling(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", OptionLinkHandling, err)
	}
	return l, nil
}

// Permissions returns the {file,dir} x {public,private} permission table
func (c *Config) Permissions() (map[string]any, error) {
	v, err := c.Get(OptionPermissions)
	if err != nil {
		return nil, err
	}
	m, ok := mapping(v)
	if !ok {
		return nil, fmt.Errorf("%s: expected a mapping, got %T", OptionPermissions, v)
	}
	out := make(map[string]any, len(m))
	for kind, section := range m {
		if sm, ok := mapping(section); ok {
			out[kind] = sm
			continue
		}
		out[kind] = section
	}
	return out, nil
}

// mapping reports whether v is a string keyed mapping and returns it as
// map[string]any.
func mapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case vfs.Structure:
		return map[string]any(m), true
	}
	return nil, false
}

// merge returns base with over merged on top, recursing into mappings
func merge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = clone(v)
	}
	for k, v := range over {
		if om, ok := mapping(v); ok {
			if bm, ok := mapping(out[k]); ok {
				out[k] = merge(bm, om)
				continue
			}
		}
		out[k] = clone(v)
	}
	return out
}

// clone deep copies mappings, slices and byte contents
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = clone(e)
		}
		return out
	case vfs.Structure:
		return vfs.Structure(clone(map[string]any(t)).(map[string]any))
	case []byte:
		return slices.Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	}
	return v
}
