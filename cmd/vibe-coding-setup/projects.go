package main

import (
	"fmt"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/history"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const (
	nameColumn = 24
	descColumn = 40
)

func newProjectsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects created with this tool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.cm.GetDataPath(history.FileName))
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout())
			out.title("🗂", "PROJECTS")
			if len(records) == 0 {
				out.info("No projects recorded yet.")
				if !a.cfg.History.Enabled {
					out.muted("History is disabled (history.enabled=false).")
				}
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
					cliBullet.Render("●"),
					cliValue.Render(column(r.Name, nameColumn)),
					cliMuted.Render(column(r.Description, descColumn)),
					cliMuted.Render(r.CreatedAt.Local().Format("2006-01-02 15:04")),
				)
				out.muted("  " + r.Path)
			}
			out.newline()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of projects to show (0 for all)")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Forget projects whose directory no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.cm.GetDataPath(history.FileName))
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context())
			if err != nil {
				return err
			}

			out := newPrinter(cmd.OutOrStdout())
			for _, r := range removed {
				out.bulletWithMeta(r.Name, r.Path)
			}
			out.success(fmt.Sprintf("Pruned %d projects", len(removed)))
			return nil
		},
	}

	cmd.AddCommand(pruneCmd)
	return cmd
}

// column truncates or pads s to exactly width terminal cells.
func column(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
