package templates

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() Data {
	return Data{
		ProjectName:        "test-project",
		ProjectDescription: "This is a test project",
		Slug:               "test-project",
		Author:             "Ada",
		Year:               2026,
		Date:               "2026-10-19",
		GeneratorVersion:   "1.0.0",
		ProjectDir:         "test-project",
	}
}

func TestBuiltinSet(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, tmpl := range s.List() {
		names = append(names, tmpl.Spec.Name)
	}
	assert.Equal(t, []string{
		"architecture",
		"cursor-rules",
		"implementation-plan",
		"post-execution",
		"product-requirements",
		"progress",
		"tech-stack",
	}, names)

	assert.Len(t, s.ByKind(KindFile), 6)
	assert.Len(t, s.ByKind(KindInstructions), 1)

	result := ValidateSet(s)
	assert.True(t, result.IsValid(), "built-ins should validate: %v", result.Errors)
}

func TestBuiltinPlaceholders(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)

	for _, name := range []string{
		"product-requirements", "tech-stack", "implementation-plan",
		"progress", "architecture", "post-execution",
	} {
		tmpl, err := s.Get(name)
		require.NoError(t, err)
		assert.Contains(t, tmpl.Body, "{{.ProjectName}}", "template %s missing project name placeholder", name)
	}

	prd, err := s.Get("product-requirements")
	require.NoError(t, err)
	assert.Contains(t, prd.Body, ".ProjectDescription")
}

func TestBuiltinContent(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)

	want := map[string]string{
		"product-requirements": "Product Requirements Document (PRD)",
		"tech-stack":           "Tech Stack Recommendations",
		"implementation-plan":  "Implementation Plan",
		"progress":             "Project Progress Tracker",
		"architecture":         "System Architecture Overview",
		"cursor-rules":         "Cursor Rules - Boilerplate",
		"post-execution":       "Project '{{.ProjectName}}' structure created successfully!",
	}
	for name, phrase := range want {
		tmpl, err := s.Get(name)
		require.NoError(t, err)
		assert.Contains(t, tmpl.Body, phrase, name)
	}
}

func TestRenderBuiltins(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)
	d := testData()

	for _, tmpl := range s.List() {
		t.Run(tmpl.Spec.Name, func(t *testing.T) {
			out, err := tmpl.Render(d)
			require.NoError(t, err)
			assert.NotContains(t, out, "{{")
			if tmpl.Spec.Name != "cursor-rules" {
				assert.Contains(t, out, d.ProjectName)
			}
		})
	}

	prd, err := s.Get("product-requirements")
	require.NoError(t, err)
	out, err := prd.Render(d)
	require.NoError(t, err)
	assert.Contains(t, out, d.ProjectDescription)

	post, err := s.Get("post-execution")
	require.NoError(t, err)
	out, err = post.Render(d)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Project 'test-project' structure created successfully!"))
}

func TestRenderEmptyDescription(t *testing.T) {
	s, err := Builtin()
	require.NoError(t, err)
	prd, err := s.Get("product-requirements")
	require.NoError(t, err)

	d := testData()
	d.ProjectDescription = ""
	out, err := prd.Render(d)
	require.NoError(t, err)
	assert.Contains(t, out, "Describe what test-project is")
}

func TestRenderUnknownField(t *testing.T) {
	tmpl := &Template{Spec: Spec{Name: "bad", Kind: KindFile, Path: "x.md"}, Body: "{{.Nope}}"}
	_, err := tmpl.Render(testData())
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	raw := "---\nname: notes\npath: docs/notes.md\ndescription: Notes\n---\n# {{.ProjectName}} notes\n---\nstill body\n"
	tmpl, err := Parse([]byte(raw), "inline")
	require.NoError(t, err)

	assert.Equal(t, "notes", tmpl.Spec.Name)
	assert.Equal(t, "docs/notes.md", tmpl.Spec.Path)
	assert.Equal(t, KindFile, tmpl.Spec.Kind)
	assert.Equal(t, "# {{.ProjectName}} notes\n---\nstill body\n", tmpl.Body)
	assert.Equal(t, "inline", tmpl.Source)

	_, err = Parse([]byte("# no front matter\n"), "inline")
	assert.Error(t, err)

	_, err = Parse([]byte("---\nname: [unclosed\n---\nbody\n"), "inline")
	assert.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	s := NewSet()
	_, err := s.Get("nope")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	override := "---\nname: progress\npath: memory-bank/progress.md\ndescription: Custom\n---\ncustom {{.ProjectName}}\n"
	extra := "---\nname: readme\npath: README.md\ndescription: Readme\n---\n# {{.ProjectName}}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "progress"+Suffix), []byte(override), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "readme"+Suffix), []byte(extra), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.md"), []byte("not a template"), 0644))

	s, err := Load(dir)
	require.NoError(t, err)

	progress, err := s.Get("progress")
	require.NoError(t, err)
	assert.Equal(t, "custom {{.ProjectName}}\n", progress.Body)
	assert.Equal(t, filepath.Join(dir, "progress"+Suffix), progress.Source)

	_, err = s.Get("readme")
	assert.NoError(t, err)
	assert.Len(t, s.List(), 8)
}

func TestLoadMissingDir(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Len(t, s.List(), 7)
}

func TestLoadBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+Suffix), []byte("no front matter"), 0644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "export")

	written, err := Export(dir, false)
	require.NoError(t, err)
	assert.Len(t, written, 7)

	// Exported files load back to an identical set.
	s, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, s.List(), 7)
	for _, tmpl := range s.List() {
		assert.Equal(t, dir, filepath.Dir(tmpl.Source))
	}

	// A second export without overwrite leaves customized files alone.
	custom := filepath.Join(dir, "progress"+Suffix)
	require.NoError(t, os.WriteFile(custom, []byte("---\nname: progress\npath: p.md\n---\nmine\n"), 0644))
	written, err = Export(dir, false)
	require.NoError(t, err)
	assert.Empty(t, written)
	data, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mine")

	written, err = Export(dir, true)
	require.NoError(t, err)
	assert.Len(t, written, 7)
}
