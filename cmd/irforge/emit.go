package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"irforge/internal/driver"
	"irforge/internal/observ"
	"irforge/internal/ui"
)

var (
	emitOutDir  string
	emitPrint   bool
	emitCheck   bool
	emitJobs    int
	emitNoCache bool
	emitTriple  string
)

func init() {
	emitCmd.Flags().StringVar(&emitOutDir, "out-dir", "", "write one <name>.ll file per program into this directory")
	emitCmd.Flags().BoolVar(&emitPrint, "print", false, "print each emitted module to stdout")
	emitCmd.Flags().BoolVar(&emitCheck, "check", false, "evaluate main() and fail on unexpected results")
	emitCmd.Flags().IntVar(&emitJobs, "jobs", 0, "max parallel emissions (0 = GOMAXPROCS)")
	emitCmd.Flags().BoolVar(&emitNoCache, "no-cache", false, "bypass the emission disk cache")
	emitCmd.Flags().StringVar(&emitTriple, "triple", "", "target triple (default: host)")
}

var emitCmd = &cobra.Command{
	Use:   "emit [program...]",
	Short: "Emit catalog programs as LLVM IR modules",
	Long:  `Emit builds the named catalog programs (all of them when none are named), verifies each module and optionally checks its evaluated result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := driver.Options{
			Programs: args,
			Triple:   emitTriple,
			OutDir:   emitOutDir,
			Check:    emitCheck,
			Jobs:     emitJobs,
			NoCache:  emitNoCache,
		}

		// Manifest values fill in whatever the flags left unset.
		manifest, found, err := loadProjectManifest(".")
		if err != nil {
			return err
		}
		if found {
			if len(opts.Programs) == 0 {
				opts.Programs = manifest.Config.Emit.Programs
			}
			if opts.OutDir == "" {
				opts.OutDir = manifest.Config.Emit.OutDir
			}
			if opts.Triple == "" {
				opts.Triple = manifest.Config.Emit.Triple
			}
		}

		showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
		if err != nil {
			return err
		}
		if showTimings {
			opts.Timer = observ.NewTimer()
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return err
		}

		results, err := driver.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}

		width := terminalWidth(os.Stdout, 80)
		for _, res := range results {
			if emitPrint {
				fmt.Println(res.IR)
			}
			if quiet {
				continue
			}
			status := "ok"
			if res.Cached {
				status = "cached"
			}
			if emitCheck {
				status = "checked"
			}
			note := res.OutPath
			if note == "" && res.HasResult {
				note = fmt.Sprintf("main -> %d", res.MainResult)
			}
			fmt.Println(ui.ResultLine(res.Name, status, note, width))
		}

		if showTimings {
			fmt.Fprint(os.Stderr, opts.Timer.Summary())
		}
		return nil
	},
}
