// Package utils provides small path helpers used by the CLI.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// expandHome expands ~ to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// ExpandPath expands ~ and normalizes the path.
func ExpandPath(path string) string {
	expanded := expandHome(path)
	return filepath.Clean(expanded)
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(ExpandPath(path))
	if err != nil {
		return false
	}
	return info.IsDir()
}
