package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/doctor"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/logging"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func init() {
	// Fill in what -ldflags did not set, e.g. for `go install`.
	if info, ok := debug.ReadBuildInfo(); ok {
		if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}

		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if Commit == "none" {
					Commit = setting.Value
				}
			case "vcs.time":
				if BuildDate == "unknown" {
					BuildDate = setting.Value
				}
			}
		}
	}
}

// errReported marks an error whose message was already shown to the user.
var errReported = errors.New("error already reported")

// app is the state shared by every command of one invocation.
type app struct {
	verbose bool

	cm  *sys.ConfigManager
	cfg *sys.Config
}

// load reads the configuration and installs the logger. Commands that need
// config call it from PersistentPreRunE.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	cm, err := sys.NewConfigManager()
	if err != nil {
		logging.Setup(cmd.ErrOrStderr(), "", a.verbose)
		return err
	}
	cfg, err := cm.Load()
	if err != nil {
		logging.Setup(cmd.ErrOrStderr(), "", a.verbose)
		return err
	}
	a.cm, a.cfg = cm, cfg

	logging.Setup(cmd.ErrOrStderr(), cfg.Log.Level, a.verbose)
	slog.Debug("config loaded", "data_dir", cfg.DataDir)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "vibe-coding-setup",
		Version: Version,
		Short:   "Scaffold a vibe coding project",
		Long: `vibe-coding-setup creates a new project directory with a memory bank of
planning documents (product requirements, tech stack, implementation plan,
progress tracker, architecture) and Cursor rules for AI-assisted development.

Run it without arguments for the interactive setup.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSetup(cmd, setupRequest{})
		},
	}
	rootCmd.SetVersionTemplate("vibe-coding-setup version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		cmd.SetOut(NewColorWriter(out))
		defaultHelp(cmd, args)
		cmd.SetOut(out)
	})

	rootCmd.AddCommand(
		newInitCmd(a),
		newTemplatesCmd(a),
		newStatusCmd(a),
		newProjectsCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
		newDoctorCmd(a),
	)
	return rootCmd
}

func main() {
	dataDir, _ := sys.DataDir()
	defer doctor.Recover(dataDir, Version, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errReported) {
			newPrinter(os.Stderr).errorBadge(err.Error())
		}
		os.Exit(1)
	}
}
