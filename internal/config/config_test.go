package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"deprecheck/internal/diag"
	"deprecheck/internal/rules"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const tomlConfig = `
[check]
exclude = ["vendor/**"]
severity = "error"
max_diagnostics = 10

[[deprecated_methods]]
Constant = "Foo"
Method = "bar"
Replacement = "Foo.baz"
ArgumentName = "opt"
`

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "deprecheck.toml"), tomlConfig)
	nested := filepath.Join(root, "app", "models")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if filepath.Base(path) != "deprecheck.toml" {
		t.Fatalf("found %q", path)
	}
}

func TestLoadTOML(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deprecheck.toml")
	write(t, path, tomlConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Severity() != diag.SevError {
		t.Fatalf("severity = %s", cfg.Severity())
	}
	if cfg.Check.MaxDiagnostics != 10 {
		t.Fatalf("max_diagnostics = %d", cfg.Check.MaxDiagnostics)
	}
	if len(cfg.Check.Include) != len(DefaultInclude) {
		t.Fatalf("default include not applied: %v", cfg.Check.Include)
	}
	want := rules.Entry{Constant: "Foo", Method: "bar", Replacement: "Foo.baz", ArgumentName: "opt"}
	if len(cfg.DeprecatedMethods) != 1 || cfg.DeprecatedMethods[0] != want {
		t.Fatalf("entries = %+v", cfg.DeprecatedMethods)
	}

	rs, err := cfg.RuleSet(false)
	if err != nil {
		t.Fatal(err)
	}
	if rs.Len() != 4 {
		t.Fatalf("expected builtins + 1 rule, got %d", rs.Len())
	}
	rs, err = cfg.RuleSet(true)
	if err != nil {
		t.Fatal(err)
	}
	if rs.Len() != 1 || rs.At(0).Method != "bar" {
		t.Fatalf("no-builtins rule set = %+v", rs.Rules())
	}
}

func TestLoadYAML(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".deprecheck.yml")
	write(t, path, `check:
  include: ["lib/**/*.rb"]
deprecated_methods:
  - Method: old_helper
    Replacement: new_helper
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.DeprecatedMethods) != 1 || cfg.DeprecatedMethods[0].Method != "old_helper" {
		t.Fatalf("entries = %+v", cfg.DeprecatedMethods)
	}
	if !cfg.Includes(filepath.Join(root, "lib", "a", "b.rb")) {
		t.Fatal("lib file should be included")
	}
	if cfg.Includes(filepath.Join(root, "app", "b.rb")) {
		t.Fatal("file outside include globs should be skipped")
	}
}

func TestUnknownKeysAreErrors(t *testing.T) {
	root := t.TempDir()
	tomlPath := filepath.Join(root, "deprecheck.toml")
	write(t, tomlPath, "[check]\nseverty = \"error\"\n")
	if _, err := Load(tomlPath); err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("expected unknown key error, got %v", err)
	}

	yamlPath := filepath.Join(root, ".deprecheck.yml")
	write(t, yamlPath, "check:\n  severty: error\n")
	if _, err := Load(yamlPath); err == nil {
		t.Fatal("expected unknown YAML field to fail")
	}
}

func TestInvalidValues(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deprecheck.toml")

	write(t, path, "[check]\nseverity = \"fatal\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected severity error")
	}

	write(t, path, "[check]\nexclude = [\"vendor/[\"]\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected glob error")
	}
}

func TestRuleSetReportsConfigurationError(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deprecheck.toml")
	write(t, path, "[[deprecated_methods]]\nMethod = \"bar\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = cfg.RuleSet(false)
	var ce *rules.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if ce.Index != 0 || ce.Field != "Replacement" {
		t.Fatalf("unexpected error %+v", ce)
	}
}

func TestDiscoverDefaults(t *testing.T) {
	root := t.TempDir()
	cfg, err := Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	// a config above the temp dir would change the outcome
	if cfg.Path != "" {
		t.Skipf("found unrelated config %s", cfg.Path)
	}
	if cfg.Severity() != diag.SevWarning {
		t.Fatalf("severity = %s", cfg.Severity())
	}
	for _, name := range []string{"a.rb", "lib/tasks/x.rake", "Gemfile"} {
		if !cfg.Includes(filepath.Join(root, filepath.FromSlash(name))) {
			t.Errorf("%s should be included by default", name)
		}
	}
	if cfg.Includes(filepath.Join(root, "README.md")) {
		t.Error("README.md should not be included")
	}
}

func TestExcludeAndSkipDir(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deprecheck.toml")
	write(t, path, "[check]\nexclude = [\"vendor/**\"]\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Includes(filepath.Join(root, "vendor", "gems", "a.rb")) {
		t.Fatal("vendored file should be excluded")
	}
	if !cfg.SkipDir(filepath.Join(root, "vendor", "gems")) {
		t.Fatal("vendored directory should be skipped")
	}
	if cfg.SkipDir(root) {
		t.Fatal("root is never skipped")
	}
}
