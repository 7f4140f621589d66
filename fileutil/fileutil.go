// Package fileutil has file and folder helpers: name sanitizing, existence
// checks and protected folder creation.
package fileutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"
)

// Folder constants
const (
	DenyFileName      = ".htaccess"
	DenyFileContent   = "deny from all"
	FolderPermissions = 0o755
)

var unsafeRe = regexp.MustCompile(`[^a-zA-Z0-9\-_./:\\]`)

// Sanitize removes every character that is unsafe in a file or folder
// name. Letters, digits, '-', '_', '.', '/', '\' and ':' (Windows drives)
// are kept so sub folders still resolve.
func Sanitize(name string) string {
	return unsafeRe.ReplaceAllLiteralString(name, "")
}

// Exists reports whether name exists, file or folder.
func Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// IsDir reports whether name exists and is a folder.
func IsDir(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

// MakeFolder creates path and its parents when missing. With deny, a
// ".htaccess" file denying direct web access is written in the folder.
func MakeFolder(path string, deny bool) error {
	path = strings.TrimRight(path, string(os.PathSeparator))
	if path == "" {
		path = string(os.PathSeparator)
	}

	if err := os.MkdirAll(path, FolderPermissions); err != nil {
		return err
	}

	if !deny {
		return nil
	}
	return atomic.WriteFile(filepath.Join(path, DenyFileName), strings.NewReader(DenyFileContent))
}
