package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"deprecheck/internal/cop"
	"deprecheck/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [directory]",
	Short: "List the effective deprecated-method rules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		noBuiltins, err := cmd.Flags().GetBool("no-builtins")
		if err != nil {
			return err
		}
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		cfg, err := loadConfig(dir, configPath)
		if err != nil {
			return err
		}
		rs, err := cfg.RuleSet(noBuiltins)
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), rs)
	},
}

func init() {
	rulesCmd.Flags().String("config", "", "path to deprecheck.toml or .deprecheck.yml (default: discovered)")
	rulesCmd.Flags().Bool("no-builtins", false, "list only the configured deprecated_methods")
}

// printRules пишет таблицу правил в порядке применения.
func printRules(w io.Writer, rs *rules.RuleSet) error {
	rows := [][]string{{"#", "DEPRECATED", "REPLACEMENT", "MESSAGE"}}
	for i, r := range rs.Rules() {
		replacement := r.Replacement
		if !r.Fixable() {
			replacement = "(no fix)"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Deprecated(), replacement, cop.Message(r)})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for c, cell := range row {
			if c == len(row)-1 {
				cells[c] = cell
				continue
			}
			cells[c] = runewidth.FillRight(cell, widths[c])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "  ")); err != nil {
			return err
		}
	}
	return nil
}
