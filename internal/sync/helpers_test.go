package sync_test

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func makeDirs(t *testing.T, fsys afero.Fs, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if err := fsys.MkdirAll(path, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
	}
}

func fileExists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return exists
}
