package rules

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry is one user-supplied rule as it appears in configuration files.
type Entry struct {
	Constant     string `toml:"Constant,omitempty" yaml:"Constant,omitempty" json:"Constant,omitempty"`
	Method       string `toml:"Method" yaml:"Method" json:"Method"`
	Replacement  string `toml:"Replacement" yaml:"Replacement" json:"Replacement"`
	ArgumentName string `toml:"ArgumentName,omitempty" yaml:"ArgumentName,omitempty" json:"ArgumentName,omitempty"`
}

// RuleSet is an ordered, read-only list of rules. It is safe to share
// between goroutines.
type RuleSet struct {
	rules []Rule
}

var (
	methodNameRe = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*[?!=]?$`)
	constNameRe  = regexp.MustCompile(`^\p{Lu}[\p{L}\p{N}_]*$`)
	argNameRe    = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`)

	dotCallRe   = regexp.MustCompile(`^(\p{Lu}[\p{L}\p{N}_]*)\s*\.\s*`)
	colonCallRe = regexp.MustCompile(`^(\p{Lu}[\p{L}\p{N}_]*)\s*::\s*([\p{Ll}_])`)
	selfCallRe  = regexp.MustCompile(`^self\s*(?:\.|&\.)\s*`)
	emptyArgsRe = regexp.MustCompile(`\s*\(\s*\)$`)
)

// New builds a rule set: builtins first in the given order, then one rule
// per entry in the order given. The first malformed entry aborts
// construction with a *ConfigurationError.
func New(builtin []Rule, entries []Entry) (*RuleSet, error) {
	out := make([]Rule, 0, len(builtin)+len(entries))
	out = append(out, builtin...)
	for i, e := range entries {
		r, err := FromEntry(i, e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return &RuleSet{rules: out}, nil
}

// MustNew is New for static tables; it panics on error.
func MustNew(builtin []Rule, entries []Entry) *RuleSet {
	rs, err := New(builtin, entries)
	if err != nil {
		panic(err)
	}
	return rs
}

// Default returns the rule set made of the builtins only.
func Default() *RuleSet {
	return MustNew(Builtins(), nil)
}

// FromEntry converts a configuration entry into a Rule. index is used only
// for error reporting.
func FromEntry(index int, e Entry) (Rule, error) {
	r := Rule{
		Method:       clean(e.Method),
		Replacement:  clean(e.Replacement),
		Constant:     strings.TrimPrefix(clean(e.Constant), "::"),
		ArgumentName: strings.TrimSuffix(strings.TrimPrefix(clean(e.ArgumentName), ":"), ":"),
	}

	switch {
	case r.Method == "":
		return Rule{}, &ConfigurationError{Index: index, Field: "Method", Reason: "required"}
	case !methodNameRe.MatchString(r.Method):
		return Rule{}, &ConfigurationError{Index: index, Field: "Method", Reason: fmt.Sprintf("%q is not a method name", r.Method)}
	case r.Replacement == "":
		return Rule{}, &ConfigurationError{Index: index, Field: "Replacement", Reason: "required"}
	}
	if r.Constant != "" && !constNameRe.MatchString(r.Constant) {
		reason := fmt.Sprintf("%q is not a constant name", r.Constant)
		if strings.Contains(r.Constant, "::") {
			reason = fmt.Sprintf("namespaced constant %q is not supported", r.Constant)
		}
		return Rule{}, &ConfigurationError{Index: index, Field: "Constant", Reason: reason}
	}
	if r.ArgumentName != "" && !argNameRe.MatchString(r.ArgumentName) {
		return Rule{}, &ConfigurationError{Index: index, Field: "ArgumentName", Reason: fmt.Sprintf("%q is not a keyword name", r.ArgumentName)}
	}
	if callForm(r.Replacement) == callText(r) {
		return Rule{}, &ConfigurationError{Index: index, Field: "Replacement", Reason: "replacement is the deprecated call itself"}
	}
	return r, nil
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// callForm rewrites spellings of the same call to the form callText
// produces: ::Foo.bar, Foo::bar, Foo . bar, self.bar and bar() all
// reduce to Foo.bar or bar.
func callForm(s string) string {
	s = strings.TrimPrefix(s, "::")
	s = emptyArgsRe.ReplaceAllString(s, "")
	s = selfCallRe.ReplaceAllString(s, "")
	s = colonCallRe.ReplaceAllString(s, "$1.$2")
	return dotCallRe.ReplaceAllString(s, "$1.")
}

// callText is the source form a fix would produce if the replacement kept
// the deprecated call unchanged.
func callText(r Rule) string {
	if r.Constant == "" {
		return r.Method
	}
	return r.Constant + "." + r.Method
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// At returns the i-th rule.
func (rs *RuleSet) At(i int) Rule {
	return rs.rules[i]
}

// Rules returns a copy of the rules in evaluation order.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	return append([]Rule(nil), rs.rules...)
}
