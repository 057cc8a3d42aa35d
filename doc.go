/*
Package vfsadapter provides a storage adapter backed by an in-memory directory
tree, for test fixtures, scratch space and input sandboxes that should behave
exactly like a local disk without ever touching one.

# Overview

A VirtualAdapter mounts a named tree (see package vfs) and serves every
storage operation through the local-filesystem adapter from package local,
pointed at that tree. Two behaviors differ from a real disk:

  - Creating the virtual root directory is a no-op that reports success.
  - Entries are removed by their own path, without resolving links first.
    A directory is only removed when empty and failures are reported as
    plain false results.

# Basic Usage

	package main

	import (
	    "github.com/absfs/vfsadapter"
	    "github.com/absfs/vfsadapter/storage"
	)

	func main() {
	    adapter, err := vfsadapter.New(nil)
	    if err != nil {
	        panic(err)
	    }

	    disk := storage.NewDisk("scratch", adapter, nil)
	    disk.Put("foo/bar/tile1.txt", []byte("FooBar"))

	    files := disk.Files("foo/bar", false) // [foo/bar/tile1.txt]
	    _ = files
	}

# Configuration

New merges the given options over DefaultConfig. Nested mappings are merged
key by key:

	dir_name         "root"
	dir_permissions  0o755
	dir_structure    {}
	write_flags      0
	link_handling    local.DisallowLinks
	permissions      file: {public: 0o644, private: 0o600}
	                 dir:  {public: 0o755, private: 0o700}

Options can be read back with Config.Get using either spelling:

	adapter.Config().Get("dir_name") // "root"
	adapter.Config().Get("dirName")  // "root"
	adapter.Config().Get("fooBar")   // error: fooBar is not a valid field.

Keys that are not recognized are kept and logged at debug level.

# Remounting

The adapter finds its tree by name on every operation. Mounting a new tree
under the same name, for example with vfs.Setup or another call to New,
makes the adapter operate on the new tree from then on:

	adapter, _ := vfsadapter.New(nil)
	adapter.Write("foo/bar.txt", []byte("bar"), nil)

	vfs.Setup("root", 0o755, vfs.Structure{"Core": vfs.Structure{"a.php": "<?php"}})

	adapter.FileExists("foo/bar.txt") // false
	adapter.FileExists("Core/a.php")  // true

Handles obtained before the remount keep pointing at the old tree; see
vfs.Directory.Stale.

# Storage Manager

Register adds the "vfs" driver to a storage.Manager, so disks can be declared
in YAML next to real ones:

	default: scratch
	disks:
	  scratch:
	    driver: vfs
	    dir_name: scratch
	  uploads:
	    driver: local
	    root: /var/lib/uploads

# Thread Safety

The mount registry is safe for concurrent use. The trees themselves are
afero.MemMapFs instances and inherit its locking; remounting a name while
other goroutines use the old tree is not coordinated.
*/
package vfsadapter
