package main

import (
	"fmt"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or update configuration settings",
		Long: `View or update configuration settings for vibe-coding-setup.
If no arguments are provided, it lists all current settings.
If only a key is provided, it shows the current value for that key.
If both key and value are provided, it updates the setting.

Keys:
  author.name        Author used in templates
  project.git_init   Run git init in new projects (default: false)
  templates.dir      Directory of templates overriding the built-ins
  ui.interactive     Prompt style: auto, always or never (default: auto)
  history.enabled    Record created projects (default: true)
  update.repo        GitHub repository checked by "version --check"
  log.level          debug, info, warn or error (default: warn)

Every key can also be set through the environment, e.g. VIBE_SETUP_LOG_LEVEL.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				out := newPrinter(w)
				out.title("⚙️ ", "CONFIGURATION")
				for _, key := range sys.Keys {
					value, err := a.cm.Get(key)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s %s\n", cliLabel.Render(fmt.Sprintf("%-17s", key+":")), cliValue.Render(value))
				}
				out.muted(a.cm.GetDataPath("config.yaml"))
				out.newline()
				return nil
			}

			key := args[0]
			if len(args) == 1 {
				value, err := a.cm.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, value)
				return nil
			}

			value := args[1]
			if err := a.cm.Set(key, value); err != nil {
				return err
			}
			fmt.Fprintln(w, cliBadgeSuccess.Render("SET")+" "+cliLabel.Render(key)+" → "+cliHighlight.Render(value))
			return nil
		},
	}
}
