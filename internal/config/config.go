// Package config finds and decodes project configuration:
// deprecheck.toml or .deprecheck.yml, whichever is closest to the target.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"deprecheck/internal/diag"
	"deprecheck/internal/rules"
)

// FileNames are the recognised config files, in lookup order per directory.
var FileNames = []string{"deprecheck.toml", ".deprecheck.yml", ".deprecheck.yaml"}

// DefaultInclude lists the globs checked when a config sets none.
var DefaultInclude = []string{"**/*.rb", "**/*.rake", "**/Gemfile"}

// Config is a decoded project configuration.
type Config struct {
	// Path is the file the config came from; empty for defaults.
	Path string `toml:"-" yaml:"-"`
	// Root is the directory include/exclude globs are relative to.
	Root string `toml:"-" yaml:"-"`

	Check             CheckConfig   `toml:"check" yaml:"check"`
	DeprecatedMethods []rules.Entry `toml:"deprecated_methods" yaml:"deprecated_methods"`
}

type CheckConfig struct {
	Include        []string `toml:"include" yaml:"include"`
	Exclude        []string `toml:"exclude" yaml:"exclude"`
	Severity       string   `toml:"severity" yaml:"severity"`
	MaxDiagnostics int      `toml:"max_diagnostics" yaml:"max_diagnostics"`
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	cfg := &Config{Root: root}
	cfg.applyDefaults()
	return cfg
}

// Find walks up from startDir looking for a config file.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds the config governing startDir and loads it. Without a
// config file the defaults apply, rooted at startDir.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, err := filepath.Abs(startDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		return Default(root), nil
	}
	return Load(path)
}

// Load decodes the config file at path. The format follows the extension.
// Unknown keys, bad severities and malformed globs are errors.
func Load(path string) (*Config, error) {
	var (
		cfg Config
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(path, &cfg)
	case ".yml", ".yaml":
		err = decodeYAML(path, &cfg)
	default:
		err = fmt.Errorf("%s: unsupported config format", path)
	}
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = abs
	cfg.Root = filepath.Dir(abs)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func decodeTOML(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(path string, cfg *Config) error {
	// #nosec G304 -- path comes from discovery or the command line
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Check.Include) == 0 {
		c.Check.Include = append([]string(nil), DefaultInclude...)
	}
	if strings.TrimSpace(c.Check.Severity) == "" {
		c.Check.Severity = "warning"
	}
}

func (c *Config) validate() error {
	if _, err := diag.ParseSeverity(c.Check.Severity); err != nil {
		return fmt.Errorf("[check].severity: %w", err)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must not be negative")
	}
	for _, p := range append(append([]string(nil), c.Check.Include...), c.Check.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob %q", p)
		}
	}
	return nil
}

// Severity returns the configured severity for offences.
func (c *Config) Severity() diag.Severity {
	sev, err := diag.ParseSeverity(c.Check.Severity)
	if err != nil {
		return diag.SevWarning
	}
	return sev
}

// RuleSet builds the effective rules: builtins (unless noBuiltins) followed
// by the configured entries.
func (c *Config) RuleSet(noBuiltins bool) (*rules.RuleSet, error) {
	var builtin []rules.Rule
	if !noBuiltins {
		builtin = rules.Builtins()
	}
	rs, err := rules.New(builtin, c.DeprecatedMethods)
	if err != nil {
		if c.Path != "" {
			return nil, fmt.Errorf("%s: %w", c.Path, err)
		}
		return nil, err
	}
	return rs, nil
}

// Includes reports whether the file at path should be checked. path is
// made relative to Root; files outside Root are matched by base name.
func (c *Config) Includes(path string) bool {
	rel := c.rel(path)
	if c.excluded(rel) {
		return false
	}
	for _, p := range c.Check.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// SkipDir reports whether a directory is excluded as a whole.
func (c *Config) SkipDir(path string) bool {
	rel := c.rel(path)
	if rel == "." {
		return false
	}
	return c.excluded(rel)
}

func (c *Config) excluded(rel string) bool {
	for _, p := range c.Check.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (c *Config) rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	if c.Root != "" {
		if rel, err := filepath.Rel(c.Root, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(abs)
}
