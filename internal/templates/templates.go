// Package templates holds the documents written into a new project.
// Each template is a Markdown file with YAML front matter describing where the
// rendered output goes, followed by a text/template body.
package templates

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Suffix marks template files on disk and in the embedded set.
const Suffix = ".tmpl.md"

//go:embed builtin/*.tmpl.md
var builtinFS embed.FS

// ErrTemplateNotFound is returned when a named template is not in the set.
var ErrTemplateNotFound = errors.New("template not found")

// Kind says what happens to a rendered template.
type Kind string

const (
	// KindFile templates are written to Spec.Path inside the project.
	KindFile Kind = "file"
	// KindInstructions templates are printed after setup and never written.
	KindInstructions Kind = "instructions"
)

// Spec is the parsed YAML front matter of a template.
type Spec struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path,omitempty"`
	Description string `yaml:"description,omitempty"`
	Kind        Kind   `yaml:"kind,omitempty"`
}

// Template is a loaded template.
type Template struct {
	Spec   Spec
	Body   string
	Source string // "builtin" or the file it was read from
}

// Data is what a template body can reference.
type Data struct {
	ProjectName        string
	ProjectDescription string
	Slug               string
	Author             string
	Year               int
	Date               string
	GeneratorVersion   string
	ProjectDir         string // where to cd after creation
}

// Parse splits raw template text into its Spec and body.
func Parse(data []byte, source string) (*Template, error) {
	frontMatter, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("splitting front matter: %w", err)
	}

	var spec Spec
	if err := yaml.Unmarshal(frontMatter, &spec); err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}
	if spec.Kind == "" {
		spec.Kind = KindFile
	}

	return &Template{
		Spec:   spec,
		Body:   string(body),
		Source: source,
	}, nil
}

// ParseFile reads a template file from disk.
func ParseFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	return Parse(data, path)
}

// splitFrontMatter separates the YAML front matter from the Markdown body.
func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var frontMatter bytes.Buffer
	var body bytes.Buffer
	inFrontMatter := false
	frontMatterDone := false
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 && strings.TrimSpace(line) == "---" {
			inFrontMatter = true
			continue
		}

		if inFrontMatter && strings.TrimSpace(line) == "---" {
			inFrontMatter = false
			frontMatterDone = true
			continue
		}

		if inFrontMatter {
			frontMatter.WriteString(line)
			frontMatter.WriteString("\n")
		} else if frontMatterDone {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	if !frontMatterDone {
		return nil, nil, fmt.Errorf("no valid front matter found")
	}

	return frontMatter.Bytes(), body.Bytes(), nil
}

// Render executes the template body against d. Unknown fields are errors.
func (t *Template) Render(d Data) (string, error) {
	tmpl, err := template.New(t.Spec.Name).Option("missingkey=error").Parse(t.Body)
	if err != nil {
		return "", fmt.Errorf("parsing template %s: %w", t.Spec.Name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering template %s: %w", t.Spec.Name, err)
	}
	return buf.String(), nil
}

// Set manages the templates used for one scaffold run.
type Set struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewSet creates an empty template set.
func NewSet() *Set {
	return &Set{templates: make(map[string]*Template)}
}

// Builtin returns a set holding only the embedded templates.
func Builtin() (*Set, error) {
	s := NewSet()
	err := fs.WalkDir(builtinFS, "builtin", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, Suffix) {
			return nil
		}
		data, err := builtinFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read embedded template %s: %w", p, err)
		}
		t, err := Parse(data, "builtin")
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		s.Add(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Load returns the built-ins overlaid with any templates found in dir.
// A missing dir is not an error.
func Load(dir string) (*Set, error) {
	s, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return s, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return s, nil
	}
	if err := s.Overlay(dir); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts t, replacing any template with the same name.
func (s *Set) Add(t *Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[t.Spec.Name] = t
}

// Overlay discovers and loads every template file under dir.
// Templates whose name matches an existing one replace it.
func (s *Set) Overlay(dir string) error {
	var loaded []*Template
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, Suffix) {
			return nil
		}
		t, err := ParseFile(p)
		if err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
		loaded = append(loaded, t)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning template directory %s: %w", dir, err)
	}

	for _, t := range loaded {
		s.Add(t)
	}
	return nil
}

// Get retrieves a template by name.
func (s *Set) Get(name string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return t, nil
}

// List returns all templates sorted by name.
func (s *Set) List() []*Template {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Template, 0, len(s.templates))
	for _, t := range s.templates {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Spec.Name < result[j].Spec.Name
	})
	return result
}

// ByKind returns templates of one kind, sorted by name.
func (s *Set) ByKind(kind Kind) []*Template {
	var result []*Template
	for _, t := range s.List() {
		if t.Spec.Kind == kind {
			result = append(result, t)
		}
	}
	return result
}

// Export writes the embedded template sources into dir so they can be customized.
// Existing files are left untouched unless overwrite is set.
func Export(dir string, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}

	var written []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Suffix) {
			continue
		}
		dest := filepath.Join(dir, e.Name())
		if _, err := os.Stat(dest); err == nil && !overwrite {
			continue
		}
		data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			return written, fmt.Errorf("failed to read embedded template %s: %w", e.Name(), err)
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", dest, err)
		}
		written = append(written, dest)
	}
	return written, nil
}
