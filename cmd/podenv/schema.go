// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podenv/podenv/pkg/application"
)

func newSchemaCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of application files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := application.JSONSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, string(data))
			return nil
		},
	}
}
