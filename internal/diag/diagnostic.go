package diag

import (
	"deprecheck/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit replaces Span with NewText. OldText, when set, guards the edit:
// it is applied only if the current text under Span equals OldText.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}
