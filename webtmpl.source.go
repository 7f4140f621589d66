package webtmpl

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-webtmpl/fileutil"
)

// TemplateSource reads template files. Paths handed to a source are the
// folder joined with the sanitized template name and extension.
// Implementations must be safe for concurrent use.
type TemplateSource interface {
	// Exists reports whether path exists (file or folder).
	Exists(path string) bool

	// ReadFile returns the content of the file at path.
	ReadFile(path string) (string, error)
}

// OSSource reads templates from the local filesystem.
type OSSource struct{}

// NewOSSource creates a filesystem source.
func NewOSSource() *OSSource {
	return &OSSource{}
}

// Exists reports whether path exists on disk.
func (s *OSSource) Exists(path string) bool {
	return fileutil.Exists(path)
}

// ReadFile reads the file at path.
func (s *OSSource) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FSSource reads templates from an fs.FS such as an embed.FS.
// Paths are converted to slash form and cleaned before use.
type FSSource struct {
	fsys fs.FS
}

// NewFSSource wraps fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

func (s *FSSource) fsPath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// Exists reports whether path exists in the wrapped filesystem.
func (s *FSSource) Exists(p string) bool {
	_, err := fs.Stat(s.fsys, s.fsPath(p))
	return err == nil
}

// ReadFile reads the file at path from the wrapped filesystem.
func (s *FSSource) ReadFile(p string) (string, error) {
	data, err := fs.ReadFile(s.fsys, s.fsPath(p))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
