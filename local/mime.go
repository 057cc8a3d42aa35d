package local

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MimeTypeDetector determines the MIME type of a file from its name and
// contents.
type MimeTypeDetector interface {
	DetectMimeType(path string, contents io.Reader) (string, error)
}

// ContentMimeTypeDetector sniffs file contents and falls back to the file
// extension when sniffing is inconclusive.
type ContentMimeTypeDetector struct{}

var _ MimeTypeDetector = ContentMimeTypeDetector{}

var inconclusiveMimeTypes = map[string]bool{
	"application/x-empty":      true,
	"text/plain":               true,
	"text/x-asm":               true,
	"application/octet-stream": true,
	"inode/x-empty":            true,
}

func (ContentMimeTypeDetector) DetectMimeType(path string, contents io.Reader) (string, error) {
	m, err := mimetype.DetectReader(contents)
	if err != nil {
		return "", err
	}
	detected := baseMimeType(m.String())
	if !inconclusiveMimeTypes[detected] {
		return detected, nil
	}
	if byExt := ExtensionMimeType(path); byExt != "" {
		return byExt, nil
	}
	return detected, nil
}

// ExtensionMimeType looks a MIME type up by file extension, ignoring case.
// It returns an empty string for unknown extensions.
func ExtensionMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	return baseMimeType(mime.TypeByExtension(ext))
}

func baseMimeType(s string) string {
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return strings.TrimSpace(strings.SplitN(s, ";", 2)[0])
}
