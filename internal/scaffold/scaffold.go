// Package scaffold creates the directory layout and planning documents of a
// new vibe coding project.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/templates"
	"github.com/google/uuid"
)

const (
	// MemoryBankDir holds the planning documents.
	MemoryBankDir = "memory-bank"
	// CursorDir holds editor rules.
	CursorDir = ".cursor"
)

// ErrProjectExists is returned when the target directory is already present.
var ErrProjectExists = errors.New("project directory already exists")

// Step names passed to Options.Report.
const (
	StepProjectDir = "project"
	StepSubdir     = "subdirectory"
	StepFile       = "file"
	StepGit        = "git"
)

// Options controls a single Create call.
type Options struct {
	ParentDir        string // defaults to the working directory
	Name             string
	Description      string
	Author           string
	Templates        *templates.Set // defaults to the built-ins
	GeneratorVersion string
	GitInit          bool

	// Now overrides the clock, mainly for tests.
	Now func() time.Time
	// Report, when set, is called after each directory or file is created.
	Report func(step, path string)
}

// Result describes a created project.
type Result struct {
	Path           string
	Marker         *Marker
	Directories    []string // relative to Path
	Files          []string // relative to Path
	Instructions   string
	GitInitialized bool
}

type renderedFile struct {
	path    string
	content []byte
}

// Create scaffolds a new project. Every template is rendered before anything
// touches the disk; if a later step fails the project directory is removed.
func Create(ctx context.Context, opts Options) (res *Result, err error) {
	name, err := ValidateName(opts.Name)
	if err != nil {
		return nil, err
	}

	parent := opts.ParentDir
	if parent == "" {
		if parent, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
	}
	if parent, err = filepath.Abs(parent); err != nil {
		return nil, err
	}
	target := filepath.Join(parent, name)

	if _, err := os.Lstat(target); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, target)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", target, err)
	}

	set := opts.Templates
	if set == nil {
		if set, err = templates.Builtin(); err != nil {
			return nil, fmt.Errorf("loading templates: %w", err)
		}
	}
	if vr := templates.ValidateSet(set); !vr.IsValid() {
		return nil, fmt.Errorf("invalid templates: %w", errors.Join(toErrors(vr.Errors)...))
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	created := now()
	data := templates.Data{
		ProjectName:        name,
		ProjectDescription: strings.TrimSpace(opts.Description),
		Slug:               Slug(name),
		Author:             opts.Author,
		Year:               created.Year(),
		Date:               created.Format("2006-01-02"),
		GeneratorVersion:   opts.GeneratorVersion,
		ProjectDir:         displayDir(target),
	}

	files, instructions, err := renderAll(set, data)
	if err != nil {
		return nil, err
	}

	report := opts.Report
	if report == nil {
		report = func(string, string) {}
	}

	if err := makeProjectDir(target); err != nil {
		return nil, err
	}
	slog.Debug("created project directory", "path", target)
	report(StepProjectDir, target)

	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(target); rmErr != nil {
				slog.Warn("rollback failed", "path", target, "error", rmErr)
			} else {
				slog.Debug("rolled back project directory", "path", target)
			}
			res = nil
		}
	}()

	res = &Result{Path: target, Instructions: instructions}
	root := sys.NewLocalFS(target)

	for _, dir := range []string{MemoryBankDir, CursorDir} {
		if err = root.MkdirAll(dir); err != nil {
			return nil, fmt.Errorf("creating subdirectory %s: %w", dir, err)
		}
		res.Directories = append(res.Directories, dir)
		report(StepSubdir, filepath.Join(target, dir))
	}

	for _, f := range files {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = root.WriteFile(f.path, f.content); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.path, err)
		}
		slog.Debug("wrote file", "path", f.path, "bytes", len(f.content))
		res.Files = append(res.Files, filepath.ToSlash(f.path))
		report(StepFile, filepath.Join(target, f.path))
	}

	res.Marker = &Marker{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        data.Slug,
		Description: data.ProjectDescription,
		CreatedAt:   created.UTC(),
		Generator:   opts.GeneratorVersion,
		Files:       res.Files,
	}
	if err = WriteMarker(root, res.Marker); err != nil {
		return nil, fmt.Errorf("writing marker: %w", err)
	}

	if opts.GitInit {
		if gitErr := gitInit(ctx, target); gitErr != nil {
			slog.Warn("git init failed; project left without a repository", "error", gitErr)
		} else {
			res.GitInitialized = true
			report(StepGit, target)
		}
	}

	return res, nil
}

// makeProjectDir creates target, which must not exist yet. A directory that
// appears after the earlier Lstat check is still reported as ErrProjectExists.
func makeProjectDir(target string) error {
	if err := os.Mkdir(target, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrProjectExists, target)
		}
		return fmt.Errorf("creating project directory: %w", err)
	}
	return nil
}

// displayDir is the path a user would cd into: relative to the working
// directory when target sits below it, absolute otherwise.
func displayDir(target string) string {
	wd, err := os.Getwd()
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(wd, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target
	}
	return rel
}

func renderAll(set *templates.Set, data templates.Data) ([]renderedFile, string, error) {
	var files []renderedFile
	for _, t := range set.ByKind(templates.KindFile) {
		out, err := t.Render(data)
		if err != nil {
			return nil, "", err
		}
		files = append(files, renderedFile{path: filepath.FromSlash(t.Spec.Path), content: []byte(out)})
	}

	var instructions []string
	for _, t := range set.ByKind(templates.KindInstructions) {
		out, err := t.Render(data)
		if err != nil {
			return nil, "", err
		}
		instructions = append(instructions, strings.TrimRight(out, "\n"))
	}
	return files, strings.Join(instructions, "\n\n"), nil
}

func gitInit(ctx context.Context, dir string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found on PATH: %w", err)
	}
	cmd := exec.CommandContext(ctx, "git", "init", "-q")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git init: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func toErrors(list []templates.ValidationError) []error {
	errs := make([]error, 0, len(list))
	for _, e := range list {
		errs = append(errs, e)
	}
	return errs
}
