// Package repo finds the repository that encloses a working directory.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no ancestor carries the marker directory.
var ErrNotFound = errors.New("enclosing repository not found")

// LocateRoot walks from start up to the filesystem root and returns the first
// directory, start included, that contains markerDir (e.g. ".git"). The marker
// may be a directory or a file, so linked worktrees are recognised too.
func LocateRoot(start, markerDir string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, markerDir)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s above %s", ErrNotFound, markerDir, start)
		}
		dir = parent
	}
}

// RegistryPath returns where the registry file for root lives.
func RegistryPath(root, registryFile string) string {
	return filepath.Join(root, registryFile)
}
