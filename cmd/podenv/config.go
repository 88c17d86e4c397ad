// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podenv/podenv/internal/config"
)

// newConfigCommand creates `podenv config`, which prints the effective
// settings after defaults and PODENV_* overrides are merged.
func newConfigCommand(app *App, global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as CUE",
		Long: `Print the effective configuration as CUE.

Configuration is read from, in order of precedence:
  - the file given by --config
  - the file named by $PODENV_CONFIG
  - $XDG_CONFIG_HOME/podenv/config.cue (usually ~/.config/podenv/config.cue)

Every setting can be overridden with a PODENV_<SETTING> variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: global.configPath})
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	}
}
