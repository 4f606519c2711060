package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"deprecheck/internal/config"
	"deprecheck/internal/diag"
	"deprecheck/internal/fix"
	"deprecheck/internal/rules"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiagnoseDir(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.rb":             "File.exists?(a)\n",
		"lib/b.rb":         "Dir.exists?(b)\niterator?\n",
		"lib/tasks/c.rake": "File.exist?(c)\n",
		"vendor/gems/d.rb": "File.exists?(d)\n",
		"README.md":        "File.exists?(e)\n",
		"Gemfile":          "source 'https://rubygems.org'\n",
	})
	cfg := config.Default(root)
	cfg.Check.Exclude = []string{"vendor/**"}

	opts := DefaultOptions()
	opts.Config = cfg
	opts.Jobs = 2
	res, err := DiagnoseDir(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("DiagnoseDir: %v", err)
	}

	var names []string
	for _, f := range res.Files {
		rel, _ := filepath.Rel(root, f.Path)
		names = append(names, filepath.ToSlash(rel))
	}
	want := []string{"Gemfile", "a.rb", "lib/b.rb", "lib/tasks/c.rake"}
	if len(names) != len(want) {
		t.Fatalf("files = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("files = %v, want %v", names, want)
		}
	}

	if res.Matches() != 3 {
		t.Fatalf("matches = %d, want 3", res.Matches())
	}
	ds := res.Diagnostics()
	if len(ds) != 3 {
		t.Fatalf("diagnostics = %d, want 3", len(ds))
	}
	for _, d := range ds {
		if d.Severity != diag.SevWarning || d.Code != diag.DeprecatedMethod {
			t.Fatalf("unexpected diagnostic %+v", d)
		}
	}
}

func TestDiagnoseFileWithConfiguredRules(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "x.rb")
	writeTree(t, root, map[string]string{"x.rb": "Foo.bar(opt: 1)\nFile.exists?(x)\n"})

	rs, err := rules.New(nil, []rules.Entry{{Constant: "Foo", Method: "bar", Replacement: "Foo.baz", ArgumentName: "opt"}})
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()
	opts.RuleSet = rs
	opts.Severity = diag.SevError

	res, err := Diagnose(context.Background(), path, opts)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	ds := res.Diagnostics()
	if len(ds) != 1 {
		t.Fatalf("expected only the configured rule to fire, got %d", len(ds))
	}
	if ds[0].Severity != diag.SevError {
		t.Fatalf("severity = %s", ds[0].Severity)
	}
	if !res.Bag(0).HasAtLeast(diag.SevError) {
		t.Fatal("expected error-level diagnostics")
	}
}

func TestDiagnoseMaxDiagnostics(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"x.rb": "iterator?\niterator?\niterator?\n"})
	opts := DefaultOptions()
	opts.MaxDiagnostics = 2
	res, err := DiagnoseFile(context.Background(), filepath.Join(root, "x.rb"), opts)
	if err != nil {
		t.Fatal(err)
	}
	bag := res.Files[0].Bag
	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
}

func TestDiagnoseMissingPath(t *testing.T) {
	if _, err := Diagnose(context.Background(), filepath.Join(t.TempDir(), "nope.rb"), DefaultOptions()); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestDiagnoseDirCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rb": "iterator?\n", "b.rb": "iterator?\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DiagnoseDir(ctx, root, DefaultOptions()); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestDiagnoseDirReusesParsers(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := range 12 {
		files[fmt.Sprintf("f%02d.rb", i)] = "iterator?\n"
	}
	writeTree(t, root, files)

	for _, tt := range []struct {
		jobs    int
		workers string
	}{{1, "1 jobs"}, {3, "3 jobs"}, {64, "12 jobs"}} {
		opts := DefaultOptions()
		opts.Jobs = tt.jobs
		opts.EnableTimings = true
		res, err := DiagnoseDir(context.Background(), root, opts)
		if err != nil {
			t.Fatalf("jobs=%d: %v", tt.jobs, err)
		}
		if len(res.Files) != 12 {
			t.Fatalf("jobs=%d: files = %d", tt.jobs, len(res.Files))
		}
		for _, f := range res.Files {
			if f.Bag.Len() != 1 {
				t.Fatalf("jobs=%d: %s has %d diagnostics", tt.jobs, f.Path, f.Bag.Len())
			}
		}
		if note := res.Timer.Report().Phases[2].Note; note != tt.workers {
			t.Fatalf("jobs=%d: check note = %q, want %q", tt.jobs, note, tt.workers)
		}
	}
}

func TestDiagnoseTimings(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.rb": "File.exists?(a)\n"})

	opts := DefaultOptions()
	res, err := DiagnoseDir(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Timer != nil {
		t.Fatal("timer must be nil unless requested")
	}

	opts.EnableTimings = true
	res, err = DiagnoseDir(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	report := res.Timer.Report()
	if len(report.Phases) != 3 || report.Phases[0].Name != "list" || report.Phases[0].Note != "1 files" {
		t.Fatalf("unexpected phases %+v", report.Phases)
	}

	res, err = DiagnoseFile(context.Background(), filepath.Join(root, "a.rb"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(res.Timer.Report().Phases); got != 2 {
		t.Fatalf("file phases = %d, want 2", got)
	}
}

func TestSampleFileFixesAreIdempotent(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "deprecated.rb"))
	if err != nil {
		t.Fatal(err)
	}
	root := t.TempDir()
	path := filepath.Join(root, "deprecated.rb")
	writeTree(t, root, map[string]string{"deprecated.rb": string(src)})

	res, err := DiagnoseFile(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("DiagnoseFile: %v", err)
	}
	if res.Matches() != 4 {
		t.Fatalf("matches = %d, want 4", res.Matches())
	}

	applied, err := fix.Apply(res.FileSet, res.Diagnostics(), fix.ApplyOptions{Mode: fix.ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(applied.Applied) != 4 {
		t.Fatalf("applied %d fixes, skipped %+v", len(applied.Applied), applied.Skipped)
	}

	again, err := DiagnoseFile(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("DiagnoseFile after fix: %v", err)
	}
	if again.Matches() != 0 || len(again.Diagnostics()) != 0 {
		t.Fatalf("rewritten file still reports %+v", again.Diagnostics())
	}
}
