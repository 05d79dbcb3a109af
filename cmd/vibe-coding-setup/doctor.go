package main

import (
	"fmt"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/doctor"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	var loadErr error

	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the environment can create projects",
		Args:  cobra.NoArgs,
		// A broken config is a finding here, not a reason to stop.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadErr = a.load(cmd, args)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := sys.DataDir()
			if err != nil {
				return err
			}
			results := doctor.Run(cmd.Context(), doctor.Options{
				DataDir:    dataDir,
				LoadConfig: func() error { return loadErr },
			})

			w := cmd.OutOrStdout()
			newPrinter(w).title("🩺", "DOCTOR")
			for _, r := range results {
				fmt.Fprintf(w, "%s %s %s\n", severityBadge(r.Severity), cliLabel.Render(fmt.Sprintf("%-18s", r.Name)), cliValue.Render(r.Detail))
			}
			fmt.Fprintln(w)

			if doctor.Failed(results) {
				return fmt.Errorf("some checks failed")
			}
			return nil
		},
	}
}

func severityBadge(s doctor.Severity) string {
	label := fmt.Sprintf("%-4s", s.String())
	switch s {
	case doctor.SeverityPass:
		return cliBadgeSuccess.Render(label)
	case doctor.SeverityWarn:
		return cliBadgeWarning.Render(label)
	case doctor.SeverityFail:
		return cliBadgeError.Render(label)
	default:
		return cliBadgeInfo.Render(label)
	}
}
