package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"deprecheck/internal/source"
)

type shortLine struct {
	severity string
	code     string
	path     string
	line     uint32
	col      uint32
	message  string
}

// FormatShortDiagnostics renders one line per diagnostic:
//
//	<severity> <CODE> <path>:<line>:<col> <message>
//
// Paths are relative to the FileSet base. Notes become "note" lines when
// includeNotes is set. Lines are sorted by position; the result has no
// trailing newline and is empty when nothing resolves.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	lines := make([]shortLine, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		if l, ok := resolveLine(fs, d.Primary); ok {
			l.severity, l.code, l.message = strings.ToLower(d.Severity.String()), d.Code.ID(), oneLine(d.Message)
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := resolveLine(fs, n.Span); ok {
				l.severity, l.code, l.message = "note", d.Code.ID(), oneLine(n.Msg)
				lines = append(lines, l)
			}
		}
	}

	slices.SortStableFunc(lines, func(a, b shortLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.col, b.col),
		)
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s %s %s:%d:%d %s", l.severity, l.code, l.path, l.line, l.col, l.message)
	}
	return strings.Join(out, "\n")
}

func resolveLine(fs *source.FileSet, span source.Span) (shortLine, bool) {
	file := fs.Get(span.File)
	if file == nil || int(span.Start) > len(file.Content) {
		return shortLine{}, false
	}
	start, _ := fs.Resolve(span)
	return shortLine{
		path: file.FormatPath("relative", fs.BaseDir()),
		line: start.Line,
		col:  start.Col,
	}, true
}

// oneLine сворачивает переводы строк и лишние пробелы.
func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
