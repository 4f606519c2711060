package main

// todo: tui mode (--interactive, пошаговое подтверждение замен)

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"deprecheck/internal/driver"
	"deprecheck/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.rb|directory>",
	Short: "Rewrite deprecated calls to their replacements",
	Long:  "Run the check, surface available fixes, and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFixCmd,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("dry-run", false, "print the rewritten files instead of writing them")
	addRunFlags(fixCmd)
}

func runFixCmd(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	opts, err := applyOptions(applyAll, applyOnceFlag, targetID, dryRun)
	if err != nil {
		return err
	}

	dopts, err := prepareRun(cmd, targetPath)
	if err != nil {
		return err
	}
	opts.Logger = slog.Default()

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	err = runFix(cmd.Context(), cmd.OutOrStdout(), targetPath, dopts, opts)
	if stopErr := cleanup(); err == nil {
		err = stopErr
	}
	return err
}

func applyOptions(applyAll, applyOnce bool, targetID string, dryRun bool) (fix.ApplyOptions, error) {
	if targetID != "" && (applyAll || applyOnce) {
		return fix.ApplyOptions{}, fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fix.ApplyOptions{}, fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	return fix.ApplyOptions{
		Mode:     mode,
		TargetID: targetID,
		DryRun:   dryRun,
	}, nil
}

// runFix diagnoses target, applies the selected fixes and prints a summary.
func runFix(ctx context.Context, out io.Writer, target string, dopts driver.Options, opts fix.ApplyOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := driver.Diagnose(ctx, target, dopts)
	if err != nil {
		return fmt.Errorf("fix: diagnose failed: %w", err)
	}
	printTimings(result)
	res, applyErr := fix.Apply(result.FileSet, result.Diagnostics(), opts)
	return handleApplyResult(out, res, applyErr, opts.DryRun)
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, dryRun bool) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		verb := "Applied"
		if dryRun {
			verb = "Would apply"
		}
		fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability)
		}
	}

	if len(res.FileChanges) > 0 {
		if dryRun {
			for _, change := range res.FileChanges {
				fmt.Fprintf(out, "--- %s (%d edits)\n", change.Path, change.EditCount)
				if _, err := out.Write(change.Content); err != nil {
					return err
				}
			}
		} else {
			fmt.Fprintln(out, "Updated files:")
			for _, change := range res.FileChanges {
				fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
			}
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}
	return nil
}
