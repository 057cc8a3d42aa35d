package storage

import (
	"os"
	"time"
)

// Type identifies the kind of a storage entry
type Type string

const (
	// TypeFile marks a regular file entry
	TypeFile Type = "file"
	// TypeDirectory marks a directory entry
	TypeDirectory Type = "dir"
)

// Visibility is the logical access level of an entry
type Visibility string

const (
	// Public entries are readable by everyone
	Public Visibility = "public"
	// Private entries are restricted to the owner
	Private Visibility = "private"
)

// Valid reports whether v is a known visibility
func (v Visibility) Valid() bool {
	return v == Public || v == Private
}

// Attributes describes a file or directory as returned by listings and
// metadata lookups. Fields that were not retrieved are left zero.
type Attributes struct {
	Type         Type
	Path         string
	FileSize     int64
	Visibility   Visibility
	LastModified time.Time
	MimeType     string
}

// IsFile reports whether the entry is a file
func (a Attributes) IsFile() bool { return a.Type == TypeFile }

// IsDir reports whether the entry is a directory
func (a Attributes) IsDir() bool { return a.Type == TypeDirectory }

// FromFileInfo builds attributes for path from info. Visibility and MIME type
// are left for the caller since they depend on adapter policy.
func FromFileInfo(path string, info os.FileInfo) Attributes {
	if info.IsDir() {
		return Attributes{
			Type:         TypeDirectory,
			Path:         path,
			LastModified: info.ModTime(),
		}
	}
	return Attributes{
		Type:         TypeFile,
		Path:         path,
		FileSize:     info.Size(),
		LastModified: info.ModTime(),
	}
}
