package storage

import (
	"log/slog"
	"time"
)

// Disk is the boolean surface handed to application code. Every failure is
// logged and reported as false (or a false ok value) instead of an error.
type Disk struct {
	name   string
	fs     *Filesystem
	logger *slog.Logger
}

// NewDisk wraps adapter under the given disk name. A nil logger discards
// failure reports.
func NewDisk(name string, adapter Adapter, logger *slog.Logger) *Disk {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Disk{
		name:   name,
		fs:     NewFilesystem(adapter),
		logger: logger.With("disk", name),
	}
}

// Name returns the disk name
func (d *Disk) Name() string { return d.name }

// Filesystem returns the error-returning view of the disk
func (d *Disk) Filesystem() *Filesystem { return d.fs }

// Adapter returns the driver behind the disk
func (d *Disk) Adapter() Adapter { return d.fs.Adapter() }

func (d *Disk) report(op, path string, err error) bool {
	if err == nil {
		return true
	}
	d.logger.Warn("storage operation failed", "op", op, "path", path, "error", err)
	return false
}

// Exists reports whether a file or directory exists at path
func (d *Disk) Exists(path string) bool {
	ok, err := d.fs.Has(path)
	return d.report("exists", path, err) && ok
}

// Missing is the negation of Exists
func (d *Disk) Missing(path string) bool {
	return !d.Exists(path)
}

// Put writes contents to path, creating parent directories as needed
func (d *Disk) Put(path string, contents []byte, opts ...Options) bool {
	return d.report("put", path, d.fs.Write(path, contents, merge(opts)))
}

// Get returns the contents of path
func (d *Disk) Get(path string) ([]byte, bool) {
	data, err := d.fs.Read(path)
	if !d.report("get", path, err) {
		return nil, false
	}
	return data, true
}

// Delete removes every given file, reporting false if any removal failed
func (d *Disk) Delete(paths ...string) bool {
	ok := true
	for _, p := range paths {
		if !d.report("delete", p, d.fs.Delete(p)) {
			ok = false
		}
	}
	return ok
}

// MakeDirectory creates path and any missing parents
func (d *Disk) MakeDirectory(path string, opts ...Options) bool {
	return d.report("makeDirectory", path, d.fs.CreateDirectory(path, merge(opts)))
}

// DeleteDirectory removes path and everything below it
func (d *Disk) DeleteDirectory(path string) bool {
	return d.report("deleteDirectory", path, d.fs.DeleteDirectory(path))
}

// Files lists file paths below dir
func (d *Disk) Files(dir string, recursive bool) []string {
	files, err := d.fs.ListContents(dir, recursive).Files()
	d.report("files", dir, err)
	return files
}

// AllFiles lists file paths below dir recursively
func (d *Disk) AllFiles(dir string) []string {
	return d.Files(dir, true)
}

// Directories lists directory paths below dir
func (d *Disk) Directories(dir string, recursive bool) []string {
	dirs, err := d.fs.ListContents(dir, recursive).Directories()
	d.report("directories", dir, err)
	return dirs
}

// MimeType returns the detected MIME type of path
func (d *Disk) MimeType(path string) (string, bool) {
	mt, err := d.fs.MimeType(path)
	return mt, d.report("mimeType", path, err)
}

// Size returns the size of path in bytes
func (d *Disk) Size(path string) (int64, bool) {
	size, err := d.fs.FileSize(path)
	return size, d.report("size", path, err)
}

// LastModified returns the modification time of path
func (d *Disk) LastModified(path string) (time.Time, bool) {
	ts, err := d.fs.LastModified(path)
	return ts, d.report("lastModified", path, err)
}

// GetVisibility returns the visibility of path
func (d *Disk) GetVisibility(path string) (Visibility, bool) {
	v, err := d.fs.Visibility(path)
	return v, d.report("getVisibility", path, err)
}

// SetVisibility changes the visibility of path
func (d *Disk) SetVisibility(path string, v Visibility) bool {
	return d.report("setVisibility", path, d.fs.SetVisibility(path, v))
}

// Copy copies source to destination
func (d *Disk) Copy(source, destination string) bool {
	return d.report("copy", source, d.fs.Copy(source, destination, nil))
}

// Move moves source to destination
func (d *Disk) Move(source, destination string) bool {
	return d.report("move", source, d.fs.Move(source, destination, nil))
}

func merge(opts []Options) Options {
	out := Options{}
	for _, o := range opts {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}
