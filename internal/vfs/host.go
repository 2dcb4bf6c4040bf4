package vfs

import (
	"os"
	"path/filepath"
	"strings"
)

// SanitizePath normalizes a guest-supplied path to the host platform's
// directory separator. Empty, "." and ".." elements are discarded, so no
// traversal outside the base directory survives sanitization.
func SanitizePath(path string) string {
	normalized := strings.ReplaceAll(path, "\\", "/")

	parts := strings.Split(normalized, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".", "..":
			continue
		default:
			out = append(out, part)
		}
	}

	joined := strings.Join(out, string(filepath.Separator))
	if strings.HasPrefix(normalized, "/") {
		joined = string(filepath.Separator) + joined
	}
	return joined
}

// Exists reports whether a file or directory exists at the given host path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateDirectory creates the directory at the given host path, along with
// any missing parents.
func CreateDirectory(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}

// CopyTree writes every file in the tree to host storage under dst,
// creating directories as needed.
func CopyTree(src *Directory, dst string) error {
	if err := os.MkdirAll(dst, os.ModePerm); err != nil {
		return err
	}

	for _, f := range src.Files {
		if err := os.WriteFile(filepath.Join(dst, f.Name), f.Data, 0o644); err != nil {
			return err
		}
	}

	for _, sub := range src.Dirs {
		if err := CopyTree(sub, filepath.Join(dst, sub.Name)); err != nil {
			return err
		}
	}

	return nil
}
