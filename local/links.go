package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// LinkHandling decides what listings do with symbolic links
type LinkHandling int

const (
	// SkipLinks silently leaves symbolic links out of listings
	SkipLinks LinkHandling = 1 << iota
	// DisallowLinks fails a listing when it meets a symbolic link
	DisallowLinks
)

// FollowLinks lists the target of a symbolic link under the link's path and
// descends into linked directories.
const FollowLinks LinkHandling = 0

func (l LinkHandling) String() string {
	switch l {
	case SkipLinks:
		return "skip"
	case DisallowLinks:
		return "disallow"
	}
	return "follow"
}

// lstat returns file info without following symlinks when the filesystem
// supports it, falling back to Stat otherwise.
func lstat(fsys afero.Fs, name string) (os.FileInfo, error) {
	if lstater, ok := fsys.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}

func isLink(info os.FileInfo) bool {
	return info != nil && info.Mode()&os.ModeSymlink != 0
}

// realPath resolves symbolic links in name. Only the host filesystem can
// resolve them; every other filesystem returns the cleaned name.
func realPath(fsys afero.Fs, name string) (string, error) {
	if _, ok := fsys.(*afero.OsFs); ok {
		return filepath.EvalSymlinks(name)
	}
	return filepath.Clean(name), nil
}

// ParseLinkHandling reads a link policy from configuration. Both the numeric
// flags and their names are accepted.
func ParseLinkHandling(v any) (LinkHandling, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "skip", "skip_links":
			return SkipLinks, nil
		case "disallow", "disallow_links":
			return DisallowLinks, nil
		case "follow", "follow_links", "":
			return FollowLinks, nil
		}
		return 0, fmt.Errorf("unknown link handling %q", s)
	}
	n, err := Int(v)
	if err != nil {
		return 0, fmt.Errorf("link handling: %w", err)
	}
	return LinkHandling(n), nil
}
