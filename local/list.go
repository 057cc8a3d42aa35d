package local

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/absfs/vfsadapter/storage"
)

// ListContents lists the entries below path in lexical order. A deep listing
// walks the whole subtree depth first, each directory before its children.
// Listing a missing directory yields nothing. Symbolic links are left out,
// reported as an error or followed according to the link policy.
func (a *Adapter) ListContents(path string, deep bool) iter.Seq2[storage.Attributes, error] {
	return func(yield func(storage.Attributes, error) bool) {
		location := a.Location(path)
		fsys, err := a.provider()
		if err != nil {
			yield(storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, err))
			return
		}

		info, err := fsys.Stat(location)
		if err != nil {
			if !os.IsNotExist(err) {
				yield(storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, location, err))
			}
			return
		}
		if !info.IsDir() {
			return
		}

		a.list(fsys, location, deep, make(map[string]bool), yield)
	}
}

// list yields the entries of dir and reports whether listing goes on.
// visiting holds the resolved directories on the current descent so that
// followed links cannot loop.
func (a *Adapter) list(fsys afero.Fs, dir string, deep bool, visiting map[string]bool, yield func(storage.Attributes, error) bool) bool {
	if deep {
		if real, err := realPath(fsys, dir); err == nil {
			if visiting[real] {
				return true
			}
			visiting[real] = true
			defer delete(visiting, real)
		}
	}

	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		yield(storage.Attributes{}, a.fail(storage.ErrUnableToRetrieveMetadata, dir, err))
		return false
	}
	for _, fi := range infos {
		location := filepath.Join(dir, fi.Name())
		info, keep, err := a.entry(fsys, location, fi)
		if err != nil {
			yield(storage.Attributes{}, err)
			return false
		}
		if !keep {
			continue
		}
		if !yield(a.attributes(location, info), nil) {
			return false
		}
		if deep && info.IsDir() && !a.list(fsys, location, true, visiting, yield) {
			return false
		}
	}
	return true
}

// entry applies the link policy to one directory entry. It returns the info
// to report and whether the entry is listed at all.
func (a *Adapter) entry(fsys afero.Fs, location string, info os.FileInfo) (os.FileInfo, bool, error) {
	if !isLink(info) {
		return info, true, nil
	}
	switch a.links {
	case SkipLinks:
		return nil, false, nil
	case DisallowLinks:
		return nil, false, a.fail(storage.ErrSymbolicLinkEncountered, location, nil)
	}
	target, err := fsys.Stat(location)
	if err != nil {
		return nil, false, a.fail(storage.ErrUnableToRetrieveMetadata, location, err)
	}
	return target, true, nil
}
