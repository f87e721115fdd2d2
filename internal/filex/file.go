// Package filex holds small filesystem helpers for the local blob store.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned by SafeJoin for names escaping the root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// EnsureDir creates dir (relative paths are resolved against the working
// directory) and returns its absolute path.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// SafeJoin joins a single file name onto root and rejects anything that
// would resolve outside of it.
func SafeJoin(root, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrOutsideRoot
	}

	p := filepath.Join(root, name)
	if filepath.Dir(p) != filepath.Clean(root) {
		return "", ErrOutsideRoot
	}
	return p, nil
}
