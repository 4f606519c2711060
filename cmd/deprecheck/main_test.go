package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deprecheck/internal/config"
	"deprecheck/internal/diag"
	"deprecheck/internal/diagfmt"
	"deprecheck/internal/driver"
	"deprecheck/internal/fix"
	"deprecheck/internal/rules"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func testDriverOptions(t *testing.T, dir string) driver.Options {
	t.Helper()
	opts, err := driverOptions(config.Default(dir), runFlags{}, quietLogger())
	if err != nil {
		t.Fatalf("driverOptions: %v", err)
	}
	return opts
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	tests := []struct {
		mode    string
		want    bool
		wantErr bool
	}{
		{mode: "on", want: true},
		{mode: "off", want: false},
		{mode: "auto", want: false}, // nil файл не терминал
		{mode: "rainbow", wantErr: true},
	}
	for _, tt := range tests {
		got, err := colorEnabled(tt.mode, nil)
		if (err != nil) != tt.wantErr {
			t.Fatalf("colorEnabled(%q) err = %v", tt.mode, err)
		}
		if got != tt.want {
			t.Errorf("colorEnabled(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	if lvl, err := parseLogLevel("debug"); err != nil || lvl != slog.LevelDebug {
		t.Fatalf("parseLogLevel(debug) = %v, %v", lvl, err)
	}
	if lvl, err := parseLogLevel("WARN"); err != nil || lvl != slog.LevelWarn {
		t.Fatalf("parseLogLevel(WARN) = %v, %v", lvl, err)
	}
	if _, err := parseLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestApplyOptions(t *testing.T) {
	opts, err := applyOptions(false, false, "", false)
	if err != nil || opts.Mode != fix.ApplyModeOnce {
		t.Fatalf("default mode = %v, %v", opts.Mode, err)
	}
	opts, err = applyOptions(true, false, "", true)
	if err != nil || opts.Mode != fix.ApplyModeAll || !opts.DryRun {
		t.Fatalf("--all --dry-run = %+v, %v", opts, err)
	}
	opts, err = applyOptions(false, false, "DEP1001-0-0-0", false)
	if err != nil || opts.Mode != fix.ApplyModeID || opts.TargetID != "DEP1001-0-0-0" {
		t.Fatalf("--id = %+v, %v", opts, err)
	}
	if _, err := applyOptions(true, true, "", false); err == nil {
		t.Fatal("--all with --once must fail")
	}
	if _, err := applyOptions(false, true, "x", false); err == nil {
		t.Fatal("--id with --once must fail")
	}
}

func TestDriverOptionsFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default(t.TempDir())
	cfg.Check.MaxDiagnostics = 5
	cfg.Check.Severity = "error"
	cfg.DeprecatedMethods = []rules.Entry{{Constant: "Foo", Method: "bar", Replacement: "Foo.baz"}}

	opts, err := driverOptions(cfg, runFlags{maxDiagnostics: 2, jobs: 3, noBuiltins: true}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if opts.MaxDiagnostics != 2 || opts.Jobs != 3 || opts.Severity != diag.SevError {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.RuleSet.Len() != 1 {
		t.Fatalf("expected only the configured rule, got %d", opts.RuleSet.Len())
	}

	opts, err = driverOptions(cfg, runFlags{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if opts.MaxDiagnostics != 5 || opts.RuleSet.Len() != 4 {
		t.Fatalf("config values not used: max=%d rules=%d", opts.MaxDiagnostics, opts.RuleSet.Len())
	}
}

func TestRunCheckShortAndFailLevel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rb"), "File.exists?(x)\n")
	writeFile(t, filepath.Join(dir, "b.rb"), "puts 1\n")

	copts := checkOptions{format: "short", failLevel: diag.SevWarning, pathMode: diagfmt.PathModeRelative}
	var out bytes.Buffer
	failed, err := runCheck(context.Background(), &out, dir, copts, testDriverOptions(t, dir))
	if err != nil {
		t.Fatalf("runCheck: %v", err)
	}
	want := "warning DEP1001 a.rb:1:6 `File.exists?` is deprecated in favor of `File.exist?`.\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if !failed {
		t.Fatal("warning must reach the warning fail level")
	}

	copts.failLevel = diag.SevError
	out.Reset()
	failed, err = runCheck(context.Background(), &out, dir, copts, testDriverOptions(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if failed {
		t.Fatal("warning must not reach the error fail level")
	}
}

func TestRunCheckJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	writeFile(t, path, "def each\n  return enum_for unless iterator?\nend\n")

	copts := checkOptions{format: "json", suggest: true, failLevel: diag.SevError}
	var out bytes.Buffer
	if _, err := runCheck(context.Background(), &out, path, copts, testDriverOptions(t, dir)); err != nil {
		t.Fatalf("runCheck: %v", err)
	}

	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if payload.Count != 1 {
		t.Fatalf("count = %d", payload.Count)
	}
	d := payload.Diagnostics[0]
	if d.Location.StartLine != 2 || len(d.Fixes) != 1 || d.Fixes[0].Edits[0].NewText != "block_given?" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestRunCheckCleanAndBadFormat(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.rb"), "File.exist?(x)\n")

	var out bytes.Buffer
	failed, err := runCheck(context.Background(), &out, dir, checkOptions{format: "pretty", failLevel: diag.SevInfo}, testDriverOptions(t, dir))
	if err != nil || failed {
		t.Fatalf("clean run: failed=%v err=%v", failed, err)
	}
	if !strings.Contains(out.String(), "no deprecated calls found") {
		t.Fatalf("output = %q", out.String())
	}

	if _, err := runCheck(context.Background(), &out, dir, checkOptions{format: "sarif"}, testDriverOptions(t, dir)); err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestRunFixDryRunAndWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.rb")
	src := "File.exists?(x)\nDir.exists?(y)\n"
	writeFile(t, path, src)

	var out bytes.Buffer
	opts := fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true, Logger: quietLogger()}
	if err := runFix(context.Background(), &out, dir, testDriverOptions(t, dir), opts); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(out.String(), "Would apply 2 fix(es)") || !strings.Contains(out.String(), "File.exist?(x)\nDir.exist?(y)\n") {
		t.Fatalf("dry run output:\n%s", out.String())
	}
	if data, _ := os.ReadFile(path); string(data) != src {
		t.Fatal("dry run must not touch the file")
	}

	out.Reset()
	opts.DryRun = false
	if err := runFix(context.Background(), &out, dir, testDriverOptions(t, dir), opts); err != nil {
		t.Fatalf("fix: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "File.exist?(x)\nDir.exist?(y)\n" {
		t.Fatalf("rewritten = %q", data)
	}

	// второй прогон: исправлять нечего
	out.Reset()
	if err := runFix(context.Background(), &out, dir, testDriverOptions(t, dir), opts); err != nil {
		t.Fatalf("second fix: %v", err)
	}
	if !strings.Contains(out.String(), "No applicable fixes found.") {
		t.Fatalf("second run output:\n%s", out.String())
	}
}

func TestLoadConfigDiscoversFromFileTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deprecheck.toml"), "[[deprecated_methods]]\nConstant = \"Foo\"\nMethod = \"bar\"\nReplacement = \"Foo.baz\"\n")
	target := filepath.Join(dir, "lib", "x.rb")
	writeFile(t, target, "Foo.bar\n")

	cfg, err := loadConfig(target, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.DeprecatedMethods) != 1 {
		t.Fatalf("config not discovered: %+v", cfg)
	}
}

func TestPrintRules(t *testing.T) {
	unfixable := rules.Rule{Constant: "Foo", Method: "bar", ArgumentName: "opt"}
	rs := rules.MustNew(append(rules.Builtins(), unfixable), nil)
	var out bytes.Buffer
	if err := printRules(&out, rs); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{"DEPRECATED", "File.exists?", "block_given?", "Foo.bar(opt:)", "(no fix)"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestPathModeFor(t *testing.T) {
	dir := t.TempDir()
	if m, err := pathModeFor(dir, ""); err != nil || m != diagfmt.PathModeRelative {
		t.Fatalf("dir default = %v, %v", m, err)
	}
	if m, err := pathModeFor(filepath.Join(dir, "a.rb"), ""); err != nil || m != diagfmt.PathModeAuto {
		t.Fatalf("file default = %v, %v", m, err)
	}
	if m, err := pathModeFor(dir, "Basename"); err != nil || m != diagfmt.PathModeBasename {
		t.Fatalf("explicit = %v, %v", m, err)
	}
	if _, err := pathModeFor(dir, "tilde"); err == nil {
		t.Fatal("expected error for unknown path mode")
	}
}
