// Package cop runs a rule set over a parsed file and reports every
// deprecated call it finds, each with a rewrite of the whole call.
package cop

import (
	"fmt"

	"deprecheck/internal/diag"
	"deprecheck/internal/fix"
	"deprecheck/internal/match"
	"deprecheck/internal/rules"
	"deprecheck/internal/source"
	"deprecheck/internal/syntax"
)

// Options tune how offences are reported.
type Options struct {
	Severity diag.Severity
}

// DefaultOptions reports offences as warnings.
func DefaultOptions() Options {
	return Options{Severity: diag.SevWarning}
}

// Message formats the offence text for r.
func Message(r rules.Rule) string {
	return fmt.Sprintf("`%s` is deprecated in favor of `%s`.", r.Deprecated(), r.Replacement)
}

// Collect runs the whole match pass over tree and returns the matches in
// traversal order (outer calls first, rules in rule-set order per call).
func Collect(tree *syntax.Tree, rs *rules.RuleSet) []match.Match {
	if tree == nil || tree.Root == nil {
		return nil
	}
	var out []match.Match
	for _, call := range syntax.Calls(tree.Root) {
		out = append(out, match.MatchAll(call, rs)...)
	}
	return out
}

// Check reports parse errors of tree and one diagnostic per match.
// Matching completes before any diagnostic is built.
func Check(tree *syntax.Tree, rs *rules.RuleSet, r diag.Reporter, opts Options) int {
	if tree == nil {
		return 0
	}
	for _, pe := range tree.Errors {
		code := diag.SynParseError
		if pe.Missing {
			code = diag.SynMissing
		}
		diag.Emit(r, diag.NewError(code, pe.Span, pe.Message))
	}
	matches := Collect(tree, rs)
	for _, m := range matches {
		diag.Emit(r, Diagnose(tree.File, m, opts))
	}
	return len(matches)
}

// Diagnose turns a match into a diagnostic pointing at the selector, with a
// fix when the rule is fixable.
func Diagnose(file *source.File, m match.Match, opts Options) diag.Diagnostic {
	d := diag.New(opts.Severity, diag.DeprecatedMethod, m.Call.SelectorSpan(), Message(m.Rule))
	if !m.Rule.Fixable() || file == nil {
		return d
	}
	return d.WithFixSuggestion(Fix(file, m))
}

// Fix builds the rewrite for m: the whole call is replaced by the rule's
// replacement followed by the original text after the selector, so
// arguments and parentheses survive.
func Fix(file *source.File, m match.Match) diag.Fix {
	callSpan := m.Call.Span()
	tail := source.Span{File: callSpan.File, Start: m.Call.SelectorSpan().End, End: callSpan.End}
	return fix.ReplaceSpan(
		fmt.Sprintf("Replace with `%s`", m.Rule.Replacement),
		callSpan,
		m.Rule.Replacement+file.Text(tail),
		file.Text(callSpan),
		fix.WithID(fmt.Sprintf("%s-%d-%d-%d", diag.DeprecatedMethod.ID(), callSpan.File, callSpan.Start, m.Index)),
		fix.Preferred(),
	)
}
