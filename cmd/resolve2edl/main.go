// Command resolve2edl merges a DaVinci Resolve Media Pool export and an Edit
// Index export into an Edit Decision List workbook.
//
// It parses flags (and an optional production profile), validates the
// configuration, and either runs the input preflight (--check) or the
// conversion pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/resolve2edl/internal/check"
	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/display"
	"github.com/backmassage/resolve2edl/internal/logging"
	"github.com/backmassage/resolve2edl/internal/pipeline"
	"github.com/backmassage/resolve2edl/internal/report"
	"github.com/backmassage/resolve2edl/internal/table"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	code := 0
	cmd := newRootCmd(&code)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "resolve2edl: %v\n", err)
		return 1
	}
	return code
}

func newRootCmd(code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve2edl [flags] [dir]",
		Short: "Merge a Resolve Media Pool and Edit Index into an EDL spreadsheet",
		Long: `resolve2edl joins the Media Pool export (scene, take, camera, keywords) with the
Edit Index export of a timeline, so every clip on the timeline carries the
metadata of its source file. The result is written to <output>.xlsx next to
the inputs; clips without a source go to a separate file.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.BindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
		// back to run() and out on stderr.
		cfg := config.DefaultConfig()
		if err := flags.Apply(&cfg, args); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err := logging.NewLogger(&cfg)
		if err != nil {
			return err
		}
		defer log.Close()

		// Phase 2: Logger available. All output goes through log from here on.
		display.PrintBanner(cmd.OutOrStdout(), "v"+version)
		if cfg.ProfilePath != "" {
			log.Info("Profile: %s", cfg.ProfilePath)
		}

		if cfg.CheckOnly {
			if err := check.Run(&cfg, log); err != nil {
				log.Error("%v", err)
				*code = 1
			}
			return nil
		}

		// Phase 3: Signal handling. Cancel on SIGINT/SIGTERM; the pipeline
		// stops between stages before anything is written.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case <-sigCh:
				log.Warn("Received interrupt, stopping before any output is written")
				cancel()
			case <-ctx.Done():
			}
		}()

		// Phase 4: Run the pipeline (load → normalize → merge → export → report).
		stats, err := pipeline.Run(ctx, &cfg, log, report.NewConsole(cmd.OutOrStdout()))
		if err != nil {
			log.Error("%v", err)
			if hint := hintFor(err); hint != "" {
				log.Info("%s", hint)
			}
			*code = 1
			return nil
		}

		logOutcome(log, &cfg, stats)
		return nil
	}
	return cmd
}

// logOutcome prints the closing summary of a successful run.
func logOutcome(log *logging.Logger, cfg *config.Config, stats pipeline.RunStats) {
	if n := stats.Excluded(); n > 0 {
		log.Info("Left out %s (markers, unnamed or excluded tracks)", display.Plural(n, "edit index row"))
	}
	if stats.DurationIssues > 0 {
		log.Warn("%s set to zero duration", display.Plural(stats.DurationIssues, "clip"))
	}
	if stats.NoSource > 0 {
		log.Warn("%s without a source, see %s", display.Plural(stats.NoSource, "clip"), cfg.NoSourcePath())
	}
	log.Success("Wrote %s (%s total)", display.Plural(stats.Clips, "clip"), display.FormatBytes(stats.BytesWritten))
}

// hintFor suggests a fix for the fatal errors users hit most.
func hintFor(err error) string {
	switch {
	case errors.Is(err, table.ErrMissingFile):
		return "Pass the export directory as an argument, or name the files with --media / --edit."
	case errors.Is(err, table.ErrDecoding):
		return "Resolve writes the Media Pool as UTF-16 and the Edit Index as UTF-8; adjust --media-encoding / --edit-encoding."
	case errors.Is(err, table.ErrMissingColumn):
		return "Map renamed columns in a profile ([columns.edit] / [columns.media])."
	case errors.Is(err, context.Canceled):
		return "Interrupted; no files were written."
	}
	return ""
}
