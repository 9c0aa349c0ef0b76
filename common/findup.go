package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var ErrNotFound = errors.New("not found in directory tree")

// FindUp walks from start toward the filesystem root and returns the first
// existing path start/.../rel. When dir is true only directories match,
// otherwise only regular files match.
func FindUp(start, rel string, dir bool) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(current, rel)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() == dir {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNotFound
		}
		current = parent
	}
}

// BaseName strips the directory and every extension from a path, so that
// "src/phone.cyn.ts" becomes "phone".
func BaseName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
