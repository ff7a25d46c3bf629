package ui

import (
	"smriti/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var recordHeaders = []string{"Id", "Alias", "Command", "Info", "Service"}

// RecordTable renders commands as a table with one row per command.
func RecordTable(commands []model.Command) string {
	rows := make([][]string, 0, len(commands))
	for _, c := range commands {
		rows = append(rows, []string{formatID(c.ID), c.Alias, c.Command, c.Info, c.Service})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderColorStyle).
		Headers(recordHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 2 {
				return tableCommandStyle
			}
			return tableCellStyle
		})

	return t.Render()
}

// ValueTable renders a single titled column.
func ValueTable(title string, values []string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderColorStyle).
		Headers(title).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle.Align(lipgloss.Center)
			}
			return tableCellStyle
		})
	for _, v := range values {
		t.Row(v)
	}
	return t.Render()
}
