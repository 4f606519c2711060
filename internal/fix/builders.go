package fix

import (
	"deprecheck/internal/diag"
	"deprecheck/internal/source"
)

// Option adjusts a fix while it is being built.
type Option func(*diag.Fix)

func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) { f.Kind = kind }
}

// Preferred marks the fix as the one to pick when several are offered.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

// WithID sets the identifier used by `fix --id`.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// New builds an always-safe quick fix from edits. Edits of one fix are
// applied atomically by Apply.
func New(title string, edits []diag.TextEdit, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         append([]diag.TextEdit(nil), edits...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// ReplaceSpan replaces the text of span with newText. expect, when not
// empty, guards the edit: it fails unless span still holds exactly expect.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return New(title, []diag.TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts...)
}
