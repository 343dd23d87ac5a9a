package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// WriteFile creates a file (and its parents) under root with the given
// content.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", rel, err)
	}
}

// Touch sets a file's modification time, so fingerprint changes are
// deterministic in tests.
func Touch(t *testing.T, root, rel string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(filepath.Join(root, rel), mtime, mtime); err != nil {
		t.Fatalf("Chtimes(%s) error = %v", rel, err)
	}
}

// ReadFile returns a file's content as a string.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", rel, err)
	}
	return string(data)
}

// Exists reports whether a path exists under root.
func Exists(t *testing.T, root, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(root, rel))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("Stat(%s) error = %v", rel, err)
	return false
}
