// Package diag defines the diagnostic model shared by the parser front-end,
// the checker and the fix engine.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string form (DEP1001, SYN2001).
//   - Message – short human text.
//   - Primary – the source.Span the finding points at.
//   - Notes – optional secondary spans with extra context.
//   - Fixes – optional Fix records.
//
// # Fix suggestions
//
// A Fix is data only: a title, a Kind, an Applicability level, an optional
// stable ID and a list of TextEdit. TextEdit.OldText guards the edit; the fix
// engine (internal/fix) refuses to apply an edit whose target text changed.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. BagReporter stores into a Bag, which keeps
// a size limit and sorts by position. Rendering lives in
// internal/diagfmt, application of fixes in internal/fix.
package diag
