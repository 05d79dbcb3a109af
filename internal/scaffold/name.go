package scaffold

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyName is returned for a blank project name.
	ErrEmptyName = errors.New("project name cannot be empty")
	// ErrInvalidName is returned for names that cannot be a single directory.
	ErrInvalidName = errors.New("invalid project name")
)

// ValidateName trims name and checks it can be used as one directory entry.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q must not contain path separators", ErrInvalidName, name)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: name contains a NUL byte", ErrInvalidName)
	}
	return name, nil
}

var (
	reCamel   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	reNonSlug = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slug converts a project name to kebab-case ("My Cool App" -> "my-cool-app").
// Names with no usable characters become "project".
func Slug(name string) string {
	s := reCamel.ReplaceAllString(strings.TrimSpace(name), "${1}-${2}")
	s = strings.ToLower(s)
	s = reNonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "project"
	}
	return s
}
