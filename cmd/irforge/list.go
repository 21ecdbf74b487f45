package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"irforge/internal/programs"
	"irforge/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the program catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := make([]ui.CatalogRow, 0)
		for _, p := range programs.Registry() {
			row := ui.CatalogRow{Name: p.Name, Desc: p.Desc}
			if p.Expect != nil {
				row.HasExpect = true
				row.Expect = *p.Expect
			}
			rows = append(rows, row)
		}
		width := terminalWidth(os.Stdout, 80)
		fmt.Print(ui.RenderCatalog("program catalog", rows, width))
		return nil
	},
}
