// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podenv/podenv/internal/capability"
)

func newCapabilitiesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the capabilities an application can enable",
		Long: `List the capabilities in the order they are applied.

Each capability is enabled in an application file with
'capabilities: { <id>: true }' and toggled per invocation with --<id> or
--no-<id>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := capability.All()
			rows := make([][]string, 0, len(all))
			for _, c := range all {
				rows = append(rows, []string{string(c.ID), c.Description})
			}
			fmt.Fprintln(app.stdout, nameTable("CAPABILITY", "DESCRIPTION", rows))
			return nil
		},
	}
}
