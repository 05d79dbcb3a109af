package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/history"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/prompt"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/scaffold"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/templates"
	"github.com/spf13/cobra"
)

// setupRequest carries the init flags. Unset fields are prompted for.
type setupRequest struct {
	name        string
	description string
	descSet     bool
	parentDir   string
	templateDir string
	git         bool
	gitSet      bool
	noHistory   bool
	yes         bool
}

func newInitCmd(a *app) *cobra.Command {
	var req setupRequest

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a new project",
		Long: `Create a new project directory with a memory bank and Cursor rules.

Anything not given as an argument or flag is asked for interactively,
unless --yes is set.`,
		Example: `  vibe-coding-setup init
  vibe-coding-setup init my-app -d "A todo list for teams" --git
  vibe-coding-setup init my-app --yes --dir ~/code`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.name = args[0]
			}
			req.descSet = cmd.Flags().Changed("description")
			req.gitSet = cmd.Flags().Changed("git")
			return a.runSetup(cmd, req)
		},
	}

	cmd.Flags().StringVarP(&req.description, "description", "d", "", "brief project description")
	cmd.Flags().StringVar(&req.parentDir, "dir", "", "parent directory for the project (default: current directory)")
	cmd.Flags().StringVar(&req.templateDir, "template-dir", "", "directory of templates overriding the built-ins (default: templates.dir)")
	cmd.Flags().BoolVar(&req.git, "git", false, "run git init in the new project (default: project.git_init)")
	cmd.Flags().BoolVar(&req.noHistory, "no-history", false, "do not record the project in the history")
	cmd.Flags().BoolVarP(&req.yes, "yes", "y", false, "never prompt; fail if the name is missing")
	return cmd
}

// runSetup is the interactive setup flow shared by the root command and init.
func (a *app) runSetup(cmd *cobra.Command, req setupRequest) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newPrinter(cmd.OutOrStdout())
	ask := prompt.New(a.cfg.UI.Interactive, cmd.InOrStdin(), cmd.OutOrStdout())

	out.title("", "Vibe Coding Project Setup")

	name := req.name
	if name == "" {
		if req.yes {
			return errors.New("a project name is required with --yes")
		}
		var err error
		name, err = ask.Ask(ctx, prompt.Field{
			Label:       "Enter project name: ",
			Placeholder: "my-app",
			Validate: func(s string) error {
				_, err := scaffold.ValidateName(s)
				return err
			},
		})
		if err != nil {
			return a.aborted(out, err)
		}
	}

	description := req.description
	if !req.descSet && !req.yes {
		var err error
		description, err = ask.Ask(ctx, prompt.Field{
			Label:       "Enter a brief project description: ",
			Placeholder: "optional",
		})
		if err != nil {
			return a.aborted(out, err)
		}
	}

	templateDir := req.templateDir
	if templateDir == "" {
		templateDir = a.cfg.Templates.Dir
	}
	set, err := templates.Load(templateDir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	gitInit := a.cfg.Project.GitInit
	if req.gitSet {
		gitInit = req.git
	}

	res, err := scaffold.Create(ctx, scaffold.Options{
		ParentDir:        req.parentDir,
		Name:             name,
		Description:      description,
		Author:           a.cfg.Author.Name,
		Templates:        set,
		GeneratorVersion: Version,
		GitInit:          gitInit,
		Report: func(step, path string) {
			switch step {
			case scaffold.StepProjectDir:
				out.plain("Created project directory: " + path)
			case scaffold.StepSubdir:
				out.plain("Created subdirectory: " + path)
			case scaffold.StepFile:
				out.muted("Created file: " + path)
			case scaffold.StepGit:
				out.muted("Initialized git repository in " + path)
			}
		},
	})
	if errors.Is(err, scaffold.ErrProjectExists) {
		trimmed, _ := scaffold.ValidateName(name)
		out.errorLine(fmt.Sprintf("Directory '%s' already exists. Please choose a different name.", trimmed))
		return errReported
	}
	if err != nil {
		return err
	}

	if a.cfg.History.Enabled && !req.noHistory {
		a.recordHistory(ctx, res)
	}

	out.newline()
	out.keyValue("Project name", res.Marker.Name)
	out.keyValue("Project description", res.Marker.Description)
	out.keyValue("Project directory", res.Path)
	out.newline()
	if res.Instructions != "" {
		out.plain(res.Instructions)
	}
	return nil
}

func (a *app) aborted(out printer, err error) error {
	if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
		out.newline()
		out.warning("Setup cancelled. No files were created.")
		return errReported
	}
	return err
}

func (a *app) recordHistory(ctx context.Context, res *scaffold.Result) {
	store, err := history.Open(a.cm.GetDataPath(history.FileName))
	if err != nil {
		slog.Warn("project history unavailable", "error", err)
		return
	}
	defer store.Close()

	_, err = store.Add(ctx, history.Record{
		ID:          res.Marker.ID,
		Name:        res.Marker.Name,
		Description: res.Marker.Description,
		Path:        filepath.Clean(res.Path),
		CreatedAt:   res.Marker.CreatedAt,
	})
	if err != nil {
		slog.Warn("could not record project in history", "error", err)
	}
}
