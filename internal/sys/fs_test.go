package sys

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFS(t *testing.T) {
	fs := NewLocalFS(t.TempDir())
	testFile := "test.txt"
	content := []byte("hello memory bank")

	// Test Write
	if err := fs.WriteFile(testFile, content); err != nil {
		t.Errorf("WriteFile failed: %v", err)
	}

	// Test Read
	got, err := fs.ReadFile(testFile)
	if err != nil {
		t.Errorf("ReadFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("got %q, want %q", got, content)
	}

	if _, err := fs.ReadFile("missing.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile(missing.txt) = %v, want ErrNotExist", err)
	}
}

func TestLocalFS_Subdir(t *testing.T) {
	fs := NewLocalFS(t.TempDir())
	testFile := filepath.Join("memory-bank", "nested.md")
	content := []byte("nested content")

	if err := fs.WriteFile(testFile, content); err != nil {
		t.Errorf("WriteFile in subdir failed: %v", err)
	}

	got, err := fs.ReadFile(testFile)
	if err != nil {
		t.Errorf("ReadFile in subdir failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("got %q, want %q", got, content)
	}

	if err := fs.MkdirAll(filepath.Join(".cursor", "rules")); err != nil {
		t.Errorf("MkdirAll failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(fs.baseDir, ".cursor", "rules"))
	if err != nil || !info.IsDir() {
		t.Errorf("expected .cursor/rules directory, got %v", err)
	}
}

func TestLocalFS_RejectsEscapes(t *testing.T) {
	fs := NewLocalFS(t.TempDir())

	for _, p := range []string{
		"../outside.txt",
		filepath.Join("a", "..", "..", "outside.txt"),
		"/etc/passwd",
	} {
		err := fs.WriteFile(p, []byte("x"))
		if !errors.Is(err, ErrPathEscapesRoot) {
			t.Errorf("WriteFile(%q) = %v, want ErrPathEscapesRoot", p, err)
		}
		if _, err := fs.ReadFile(p); !errors.Is(err, ErrPathEscapesRoot) {
			t.Errorf("ReadFile(%q) = %v, want ErrPathEscapesRoot", p, err)
		}
	}

	// Paths that merely contain dots stay inside.
	if err := fs.WriteFile("..notes.md", []byte("x")); err != nil {
		t.Errorf("WriteFile(..notes.md) failed: %v", err)
	}
}
