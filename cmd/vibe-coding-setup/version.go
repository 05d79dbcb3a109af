package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/release"
	"github.com/spf13/cobra"
)

// newChecker is replaced in tests.
var newChecker = release.NewChecker

func newVersionCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print detailed version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd.OutOrStdout())
			out.title("✨", "VIBE CODING SETUP")
			out.keyValueHighlight("Version  ", Version)
			out.keyValue("Commit   ", Commit)
			out.keyValue("Built    ", BuildDate)
			out.keyValue("Platform ", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH))
			out.keyValue("Compiler ", runtime.Version())
			out.newline()

			if !check {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			st, err := newChecker(a.cfg.Update.Repo).Check(ctx, Version)
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}

			switch {
			case !st.Comparable:
				out.badge("INFO", fmt.Sprintf("Latest release is %s; this build (%s) is not a tagged release.", st.Latest.TagName, Version))
			case st.Newer:
				out.badge("UPDATE", fmt.Sprintf("A newer release is available: %s (you have %s)", st.Latest.TagName, Version))
				if st.Latest.HTMLURL != "" {
					out.command("Download it from", st.Latest.HTMLURL, "")
				}
			default:
				out.success(fmt.Sprintf("vibe-coding-setup is up to date (%s)", Version))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
