// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/podenv/podenv/pkg/application"
)

// listApplications prints the NAME/DESCRIPTION table of --list.
func (a *App) listApplications(catalog *application.Catalog) error {
	rows := make([][]string, 0, catalog.Len())
	for _, app := range catalog.Applications() {
		rows = append(rows, []string{app.Name, app.Description})
	}
	fmt.Fprintln(a.stdout, nameTable("NAME", "DESCRIPTION", rows))
	return nil
}

// nameTable renders a borderless two-column table.
func nameTable(nameHeader, descHeader string, rows [][]string) string {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(nameHeader, descHeader).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingRight(2)
			switch {
			case row == table.HeaderRow:
				return style.Inherit(TitleStyle)
			case col == 0:
				return style.Inherit(NameStyle)
			default:
				return style.Inherit(SubtitleStyle)
			}
		}).
		String()
}
