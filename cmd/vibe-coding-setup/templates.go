package main

import (
	"fmt"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/scaffold"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/templates"
	"github.com/spf13/cobra"
)

func newTemplatesCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect, export and validate project templates",
		Long: `Templates are Markdown files with YAML front matter. Files ending in
.tmpl.md in the template directory (templates.dir, or --template-dir)
replace built-in templates of the same name.`,
	}
	cmd.PersistentFlags().StringVar(&dir, "template-dir", "", "template directory (default: templates.dir)")

	load := func() (*templates.Set, error) {
		d := dir
		if d == "" {
			d = a.cfg.Templates.Dir
		}
		return templates.Load(d)
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := load()
			if err != nil {
				return err
			}
			out := newPrinter(cmd.OutOrStdout())
			out.title("📄", "TEMPLATES")
			for _, t := range set.List() {
				target := t.Spec.Path
				if t.Spec.Kind == templates.KindInstructions {
					target = "printed after setup"
				}
				out.bulletWithMeta(t.Spec.Name, target)
				if t.Spec.Description != "" {
					out.muted("  " + t.Spec.Description)
				}
				if t.Source != "" && t.Source != "builtin" {
					out.muted("  from " + t.Source)
				}
			}
			out.newline()
			return nil
		},
	}

	var raw bool
	var projectName, projectDesc string
	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Render a template with sample values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := load()
			if err != nil {
				return err
			}
			t, err := set.Get(args[0])
			if err != nil {
				return err
			}
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), t.Body)
				return nil
			}
			rendered, err := t.Render(sampleData(projectName, projectDesc, a.cfg.Author.Name))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}
	showCmd.Flags().BoolVar(&raw, "raw", false, "print the template body without rendering")
	showCmd.Flags().StringVar(&projectName, "name", "example-project", "project name used for rendering")
	showCmd.Flags().StringVar(&projectDesc, "description", "An example project", "project description used for rendering")

	var overwrite bool
	exportCmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Copy the built-in templates into a directory for editing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.cfg.Templates.Dir
			if len(args) == 1 {
				target = args[0]
			}
			written, err := templates.Export(target, overwrite)
			if err != nil {
				return err
			}
			out := newPrinter(cmd.OutOrStdout())
			for _, p := range written {
				out.bullet(p)
			}
			if len(written) == 0 {
				out.info("All templates already exist in " + target + " (use --force to overwrite)")
				return nil
			}
			out.success(fmt.Sprintf("Exported %d templates to %s", len(written), target))
			return nil
		},
	}
	exportCmd.Flags().BoolVarP(&overwrite, "force", "f", false, "overwrite existing files")

	validateCmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check templates for errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				dir = args[0]
			}
			set, err := load()
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout())
			result := templates.ValidateSet(set)
			for _, w := range result.Warnings {
				out.warning(w.Error())
			}
			for _, e := range result.Errors {
				out.errorBadge(e.Error())
			}
			if !result.IsValid() {
				return fmt.Errorf("%d template errors", len(result.Errors))
			}
			out.success(fmt.Sprintf("%d templates valid", len(set.List())))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, exportCmd, validateCmd)
	return cmd
}

func sampleData(name, description, author string) templates.Data {
	now := time.Now()
	return templates.Data{
		ProjectName:        name,
		ProjectDescription: description,
		Slug:               scaffold.Slug(name),
		Author:             author,
		Year:               now.Year(),
		Date:               now.Format("2006-01-02"),
		GeneratorVersion:   Version,
		ProjectDir:         name,
	}
}
