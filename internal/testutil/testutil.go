// Package testutil provides filesystem helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to a file, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		WriteFile(t, filepath.Join(root, path), content)
	}
}
