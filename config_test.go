package vfsadapter

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absfs/vfsadapter/local"
	"github.com/absfs/vfsadapter/vfs"
)

func TestResolveConfigDefaults(t *testing.T) {
	cfg := ResolveConfig(nil)
	assert.Equal(t, DefaultConfig(), cfg.Map())
	assert.Empty(t, cfg.Unknown())

	name, err := cfg.DirName()
	require.NoError(t, err)
	assert.Equal(t, "root", name)

	perm, err := cfg.DirPermissions()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), perm)

	links, err := cfg.LinkHandling()
	require.NoError(t, err)
	assert.Equal(t, local.DisallowLinks, links)

	flags, err := cfg.WriteFlags()
	require.NoError(t, err)
	assert.Equal(t, 0, flags)

	structure, err := cfg.DirStructure()
	require.NoError(t, err)
	assert.Empty(t, structure)
}

func TestResolveConfigMergesRecursively(t *testing.T) {
	user := map[string]any{
		"dir_name":        "foo",
		"dir_permissions": 0o700,
		"link_handling":   local.SkipLinks,
		"permissions": map[string]any{
			"file": map[string]any{"public": 0o664},
		},
		"dir_structure": vfs.Structure{
			"Core": vfs.Structure{"a.txt": "a"},
		},
	}
	cfg := ResolveConfig(user)

	want := DefaultConfig()
	want["dir_name"] = "foo"
	want["dir_permissions"] = 0o700
	want["link_handling"] = local.SkipLinks
	want["permissions"].(map[string]any)["file"].(map[string]any)["public"] = 0o664
	want["dir_structure"] = map[string]any{"Core": vfs.Structure{"a.txt": "a"}}
	assert.Equal(t, want, cfg.Map())

	perms, err := cfg.Permissions()
	require.NoError(t, err)
	file := perms["file"].(map[string]any)
	assert.Equal(t, 0o664, file["public"])
	assert.Equal(t, 0o600, file["private"])
}

func TestResolveConfigDoesNotMutateInputs(t *testing.T) {
	nested := map[string]any{"public": 0o664}
	user := map[string]any{
		"permissions": map[string]any{"file": nested},
	}
	cfg := ResolveConfig(user)

	// changes to the copies stay local
	m := cfg.Map()
	m["permissions"].(map[string]any)["file"].(map[string]any)["public"] = 0o600
	m["dir_name"] = "changed"

	assert.Equal(t, map[string]any{"public": 0o664}, nested)
	assert.Len(t, user, 1)

	v, err := cfg.Get("dir_name")
	require.NoError(t, err)
	assert.Equal(t, "root", v)

	perms, err := cfg.Permissions()
	require.NoError(t, err)
	assert.Equal(t, 0o664, perms["file"].(map[string]any)["public"])

	assert.Equal(t, "root", DefaultConfig()["dir_name"])
}

func TestConfigGetSpellings(t *testing.T) {
	cfg := ResolveConfig(map[string]any{"dir_name": "foo"})

	tests := []struct {
		snake string
		camel string
	}{
		{"dir_name", "dirName"},
		{"dir_permissions", "dirPermissions"},
		{"dir_structure", "dirStructure"},
		{"write_flags", "writeFlags"},
		{"link_handling", "linkHandling"},
		{"permissions", "permissions"},
	}
	for _, tt := range tests {
		snake, err := cfg.Get(tt.snake)
		require.NoError(t, err, tt.snake)
		camel, err := cfg.Get(tt.camel)
		require.NoError(t, err, tt.camel)
		assert.Equal(t, snake, camel, tt.snake)
	}

	v, err := cfg.Get("dirName")
	require.NoError(t, err)
	assert.Equal(t, "foo", v)

	v, err = cfg.Get("DirName")
	require.NoError(t, err)
	assert.Equal(t, "foo", v)
}

func TestConfigGetInvalidField(t *testing.T) {
	cfg := ResolveConfig(nil)

	_, err := cfg.Get("fooBar")
	require.Error(t, err)
	assert.EqualError(t, err, "fooBar is not a valid field.")
	assert.ErrorIs(t, err, ErrInvalidField)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "fooBar", fieldErr.Name)
}

func TestConfigUnknownKeysRetained(t *testing.T) {
	cfg := ResolveConfig(map[string]any{
		"custom_key": 1,
		"empty":      nil,
	})
	assert.Equal(t, []string{"custom_key", "empty"}, cfg.Unknown())

	v, err := cfg.Get("customKey")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = cfg.Get("empty")
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestConfigNilValueIsInvalid(t *testing.T) {
	cfg := ResolveConfig(map[string]any{"dir_name": nil})

	_, err := cfg.Get("dirName")
	assert.EqualError(t, err, "dirName is not a valid field.")

	_, err = cfg.DirName()
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestConfigTypedAccessorErrors(t *testing.T) {
	cfg := ResolveConfig(map[string]any{
		"dir_name":        5,
		"dir_permissions": "rwx",
		"dir_structure":   []string{"a"},
		"write_flags":     1.5,
		"link_handling":   "sometimes",
		"permissions":     "open",
	})

	_, err := cfg.DirName()
	assert.Error(t, err)
	_, err = cfg.DirPermissions()
	assert.Error(t, err)
	_, err = cfg.DirStructure()
	assert.Error(t, err)
	_, err = cfg.WriteFlags()
	assert.Error(t, err)
	_, err = cfg.LinkHandling()
	assert.Error(t, err)
	_, err = cfg.Permissions()
	assert.Error(t, err)
}

func TestConfigNumericKinds(t *testing.T) {
	cfg := ResolveConfig(map[string]any{
		"dir_permissions": float64(0o700),
		"write_flags":     int64(os.O_APPEND),
		"link_handling":   2,
	})

	perm, err := cfg.DirPermissions()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), perm)

	flags, err := cfg.WriteFlags()
	require.NoError(t, err)
	assert.Equal(t, os.O_APPEND, flags)

	links, err := cfg.LinkHandling()
	require.NoError(t, err)
	assert.Equal(t, local.DisallowLinks, links)
}
