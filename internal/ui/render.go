// Package ui renders the CLI's human-facing output: the catalog listing and
// the per-program emission result lines.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// CatalogRow is one listing line: the program name, its description, and the
// expected main() result when the program has one.
type CatalogRow struct {
	Name      string
	Desc      string
	HasExpect bool
	Expect    int64
}

// RenderCatalog renders the catalog listing at the given terminal width.
func RenderCatalog(title string, rows []CatalogRow, width int) string {
	if width <= 0 {
		width = 80
	}
	nameWidth := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r.Name); w > nameWidth {
			nameWidth = w
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		desc := r.Desc
		if r.HasExpect {
			desc = fmt.Sprintf("%s (main -> %d)", desc, r.Expect)
		}
		descWidth := width - nameWidth - 4
		if descWidth < 20 {
			descWidth = 20
		}
		line := fmt.Sprintf("  %s  %s",
			nameStyle.Render(runewidth.FillRight(r.Name, nameWidth)),
			truncate(desc, descWidth))
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// ResultLine renders one per-program outcome line for the emit command.
func ResultLine(name, status, note string, width int) string {
	if width <= 0 {
		width = 80
	}
	statusStyled := statusStyle(status).Render(fmt.Sprintf("%8s", status))
	line := fmt.Sprintf("  %s %s", statusStyled, name)
	if note != "" {
		noteWidth := width - runewidth.StringWidth(line) - 3
		if noteWidth < 10 {
			noteWidth = 10
		}
		line += "  " + dimStyle.Render(truncate(note, noteWidth))
	}
	return line
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "ok", "checked":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "cached":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
