package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"deprecheck/internal/diag"
	"deprecheck/internal/diagfmt"
	"deprecheck/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.rb|directory>",
	Short: "Report deprecated method calls",
	Long:  `Check a Ruby source file, or every selected file within a directory, for deprecated method calls`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckCmd,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions and previews in output")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().String("path-mode", "", "how to print file paths (auto|absolute|relative|basename); relative for directories by default")
	checkCmd.Flags().String("fail-level", "warning", "exit with status 1 when a diagnostic reaches this severity (info|warning|error)")
	addRunFlags(checkCmd)
}

type checkOptions struct {
	format    string
	suggest   bool
	withNotes bool
	failLevel diag.Severity
	color     bool
	pathMode  diagfmt.PathMode
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	target := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	failLevelStr, err := cmd.Flags().GetString("fail-level")
	if err != nil {
		return fmt.Errorf("failed to get fail-level flag: %w", err)
	}
	failLevel, err := diag.ParseSeverity(failLevelStr)
	if err != nil {
		return fmt.Errorf("--fail-level: %w", err)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, err := pathModeFor(target, pathModeStr)
	if err != nil {
		return err
	}
	colored, err := useColor(cmd, os.Stdout)
	if err != nil {
		return err
	}

	dopts, err := prepareRun(cmd, target)
	if err != nil {
		return err
	}

	copts := checkOptions{
		format:    strings.ToLower(format),
		suggest:   suggest,
		withNotes: withNotes,
		failLevel: failLevel,
		color:     colored,
		pathMode:  pathMode,
	}
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	failed, err := runCheck(cmd.Context(), cmd.OutOrStdout(), target, copts, dopts)
	if stopErr := cleanup(); err == nil {
		err = stopErr
	}
	if err != nil {
		return err
	}
	if failed {
		return errFailLevel
	}
	return nil
}

// runCheck diagnoses target and writes the report to out. failed reports
// whether any diagnostic reached the fail level.
func runCheck(ctx context.Context, out io.Writer, target string, copts checkOptions, dopts driver.Options) (failed bool, err error) {
	switch copts.format {
	case "pretty", "json", "short":
	default:
		return false, fmt.Errorf("unknown format %q (must be pretty, json or short)", copts.format)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := driver.Diagnose(ctx, target, dopts)
	if err != nil {
		return false, fmt.Errorf("check: %w", err)
	}

	printTimings(res)

	bag := res.Bag(0)
	dropped := droppedCount(res)

	switch copts.format {
	case "pretty":
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       copts.color,
			PathMode:    copts.pathMode,
			ShowNotes:   copts.withNotes,
			ShowFixes:   copts.suggest,
			ShowPreview: copts.suggest,
		})
		if dropped > 0 {
			fmt.Fprintf(out, "\n... %d more diagnostic(s) not shown\n", dropped)
		}
		if bag.Len() == 0 {
			fmt.Fprintln(out, "no deprecated calls found")
		}
	case "json":
		output, err := diagfmt.BuildDiagnosticsOutput(bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         copts.pathMode,
			IncludeNotes:     copts.withNotes,
			IncludeFixes:     copts.suggest,
			IncludePreviews:  copts.suggest,
		})
		if err != nil {
			return false, err
		}
		output.Dropped += dropped
		if err := diagfmt.EncodeJSON(out, output); err != nil {
			return false, err
		}
	case "short":
		if err := diagfmt.Short(out, bag, res.FileSet, copts.withNotes); err != nil {
			return false, err
		}
	}

	return bag.HasAtLeast(copts.failLevel), nil
}

// printTimings пишет сводку фаз в stderr.
func printTimings(res *driver.Result) {
	if res == nil || res.Timer == nil {
		return
	}
	fmt.Fprint(os.Stderr, res.Timer.Summary())
}

func droppedCount(res *driver.Result) int {
	n := 0
	for _, f := range res.Files {
		if f.Bag != nil {
			n += f.Bag.Dropped()
		}
	}
	return n
}

// pathModeFor: без явного режима пути печатаются относительно каталога,
// если проверяется каталог.
func pathModeFor(target, explicit string) (diagfmt.PathMode, error) {
	if explicit != "" {
		mode, ok := diagfmt.ParsePathMode(strings.ToLower(explicit))
		if !ok {
			return diagfmt.PathModeAuto, fmt.Errorf("--path-mode: unknown mode %q (expected auto|absolute|relative|basename)", explicit)
		}
		return mode, nil
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return diagfmt.PathModeRelative, nil
	}
	return diagfmt.PathModeAuto, nil
}
