package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/absfs/absfs"
	"github.com/spf13/afero"
)

// DefaultMaxFileSize is the largest file CopyFrom copies content for when no
// limit is given.
const DefaultMaxFileSize int64 = 1 << 20

const copyBufferSize = 32 * 1024

var errNotDirectory = errors.New("not a directory")

// CopyFrom copies the tree below srcDir of src into the mount root.
// Directories and files keep their permission bits and modification times.
// Files larger than maxFileSize are created empty; a maxFileSize of zero or
// less means DefaultMaxFileSize.
func (d *Directory) CopyFrom(src absfs.Filer, srcDir string, maxFileSize int64) error {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	info, err := src.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("copy from %s: %w", srcDir, err)
	}
	if !info.IsDir() {
		return &os.PathError{Op: "copy", Path: srcDir, Err: errNotDirectory}
	}

	c := &copier{src: src, dst: d.fs, max: maxFileSize, buf: make([]byte, copyBufferSize)}
	return c.copyDir(srcDir, d.Location())
}

type copier struct {
	src absfs.Filer
	dst afero.Fs
	max int64
	buf []byte
}

func (c *copier) copyDir(srcDir, dstDir string) error {
	entries, err := c.src.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", srcDir, err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		srcPath := path.Join(srcDir, entry.Name())
		dstPath := path.Join(dstDir, entry.Name())

		switch {
		case info.IsDir():
			if err := c.dst.MkdirAll(dstPath, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			if err := c.copyDir(srcPath, dstPath); err != nil {
				return err
			}
			// Non-fatal error
			_ = c.dst.Chtimes(dstPath, info.ModTime(), info.ModTime())
		case info.Mode().IsRegular():
			if err := c.copyFile(srcPath, dstPath, info); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *copier) copyFile(srcPath, dstPath string, info os.FileInfo) error {
	dstFile, err := c.dst.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	if info.Size() <= c.max {
		if err := c.copyContents(srcPath, dstFile); err != nil {
			dstFile.Close()
			return err
		}
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}

	if err := c.dst.Chmod(dstPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	// Non-fatal error
	_ = c.dst.Chtimes(dstPath, info.ModTime(), info.ModTime())
	return nil
}

func (c *copier) copyContents(srcPath string, dst io.Writer) error {
	srcFile, err := c.src.OpenFile(srcPath, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	if _, err := io.CopyBuffer(dst, srcFile, c.buf); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}
	return nil
}
