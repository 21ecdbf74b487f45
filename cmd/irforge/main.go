package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"irforge/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "irforge",
	Short: "LLVM IR showcase emitter",
	Long:  `irforge emits a fixed catalog of LLVM IR modules and checks their behavior`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of the attached terminal, or the fallback.
func terminalWidth(f *os.File, fallback int) int {
	if !isTerminal(f) {
		return fallback
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
