package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/progress"
	"github.com/spf13/cobra"
)

const barWidth = 20

func newStatusCmd(a *app) *cobra.Command {
	var watch bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "status [dir]",
		Short: "Show checklist progress of a project",
		Long: `Count the "- [ ]" and "- [x]" items in memory-bank/progress.md and
memory-bank/implementation-plan.md, grouped by "##" section.

The project is found by walking up from dir (default: current directory)
to the nearest .vibe-coding.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := "."
			if len(args) == 1 {
				start = args[0]
			}
			tracker, err := progress.NewTracker(start)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !watch {
				rep, err := tracker.Report()
				if err != nil {
					return err
				}
				renderReport(w, rep)
				return nil
			}

			out := newPrinter(w)
			out.muted("Watching " + tracker.Root() + " (Ctrl+C to stop)")
			return tracker.Watch(cmd.Context(), debounce, func(rep *progress.Report, err error) {
				if err != nil {
					out.errorBadge(err.Error())
					return
				}
				out.muted("── " + time.Now().Format("15:04:05"))
				renderReport(w, rep)
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-render whenever the memory bank changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before re-rendering in watch mode")
	return cmd
}

func renderReport(w io.Writer, rep *progress.Report) {
	out := newPrinter(w)
	out.title("📋", "PROGRESS")
	out.keyValue("Project", rep.Root)

	if len(rep.Files) == 0 {
		out.info("No checklist files found in memory-bank/.")
		return
	}

	for _, f := range rep.Files {
		out.newline()
		out.subtitle(fmt.Sprintf("%s  %d/%d", f.Name, f.Done(), f.Total()))
		if len(f.Sections) == 0 {
			out.muted("  no checklist items")
			continue
		}
		for _, s := range f.Sections {
			fmt.Fprintf(w, "  %s %s %s\n", bar(s.Done, s.Total()), cliValue.Render(s.Title), cliMuted.Render(fmt.Sprintf("%d/%d", s.Done, s.Total())))
		}
	}

	out.newline()
	out.keyValueHighlight("Overall", fmt.Sprintf("%d/%d (%.0f%%)", rep.Done(), rep.Total(), rep.Percent()))
}

func bar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	return cliSuccess.Render(strings.Repeat("█", filled)) + cliMuted.Render(strings.Repeat("░", barWidth-filled))
}
