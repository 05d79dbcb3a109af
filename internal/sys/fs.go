package sys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscapesRoot is returned when a relative path resolves outside the base directory.
var ErrPathEscapesRoot = errors.New("path escapes base directory")

// FS defines the interface for filesystem operations
type FS interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte) error
	MkdirAll(path string) error
}

// LocalFS implements FS using the local filesystem
type LocalFS struct {
	baseDir string
}

// NewLocalFS creates a new LocalFS with a specific base directory (sandbox)
func NewLocalFS(baseDir string) *LocalFS {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &LocalFS{baseDir: baseDir}
}

// ReadFile reads a file's content
func (l *LocalFS) ReadFile(path string) ([]byte, error) {
	fullPath, err := l.resolvePath(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// WriteFile creates or overwrites a file
func (l *LocalFS) WriteFile(path string, content []byte) error {
	fullPath, err := l.resolvePath(path)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(fullPath, content, 0644)
}

// MkdirAll creates a directory and any missing parents
func (l *LocalFS) MkdirAll(path string) error {
	fullPath, err := l.resolvePath(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(fullPath, 0755)
}

// resolvePath joins relative paths onto the base directory and refuses
// anything that would land outside it.
func (l *LocalFS) resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s is absolute", ErrPathEscapesRoot, path)
	}
	fullPath := filepath.Join(l.baseDir, path)
	rel, err := filepath.Rel(l.baseDir, fullPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesRoot, path)
	}
	return fullPath, nil
}
