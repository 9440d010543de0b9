package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":              filepath.Join("out", "photo.jpg"),
		"/tmp/in/Holiday.JPEG":   filepath.Join("out", "Holiday.jpg"),
		"noext":                  filepath.Join("out", "noext.jpg"),
		"dir.v2/archive.tar.jpg": filepath.Join("out", "archive.tar.jpg"),
	}
	for in, want := range tests {
		if got := OutputPath("out", in); got != want {
			t.Fatalf("OutputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStorageSave(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nested", "out"))
	path := s.PathFor("input.jpeg")
	if !strings.HasSuffix(path, filepath.Join("nested", "out", "input.jpg")) {
		t.Fatalf("unexpected path: %s", path)
	}
	if err := s.Save(path, []byte("jpeg")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestEnsureDir(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "out", "2026", "01")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected dir, got file")
	}
}

func TestWriteFileReplaces(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "file.jpg")
	if err := WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if err := WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(b) != "hello world" {
		t.Fatalf("unexpected contents: %s", string(b))
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the output file, got %d entries", len(entries))
	}
}

func TestWriteFileFailureKeepsPrevious(t *testing.T) {
	tmp := t.TempDir()
	// a directory in place of the target makes the final rename fail
	path := filepath.Join(tmp, "taken")
	if err := os.MkdirAll(filepath.Join(path, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := WriteFile(path, []byte("data"), 0o644); err == nil {
		t.Fatalf("expected error when target is a non-empty directory")
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tempPrefix) {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
}

func TestCheckDistinct(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "photo.jpg")
	if err := os.WriteFile(in, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := CheckDistinct(in, filepath.Join(tmp, ".", "photo.jpg")); !errors.Is(err, ErrSameFile) {
		t.Fatalf("expected ErrSameFile, got %v", err)
	}
	if err := CheckDistinct(in, filepath.Join(tmp, "other.jpg")); err != nil {
		t.Fatalf("expected missing output to be distinct, got %v", err)
	}
}
