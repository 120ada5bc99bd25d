// Package filex holds filesystem helpers for the device-local databases.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsFilePath reports whether a SQLite DSN names a plain file, as opposed to
// an in-memory database or a "file:" URI.
func IsFilePath(dsn string) bool {
	return dsn != "" && !strings.Contains(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:")
}

// EnsureParentDir creates the directory that will hold path, readable only
// by the owner and group. It is a no-op for DSNs that are not plain files.
func EnsureParentDir(path string) (string, error) {
	if !IsFilePath(path) {
		return "", nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
