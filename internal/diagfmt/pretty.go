package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"deprecheck/internal/diag"
	"deprecheck/internal/source"
)

type palette struct {
	path    *color.Color
	code    *color.Color
	gutter  *color.Color
	caret   *color.Color
	removed *color.Color
	added   *color.Color
	note    *color.Color
	fix     *color.Color
	sev     map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		code:    color.New(color.Faint),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgHiYellow, color.Bold),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
		note:    color.New(color.FgCyan),
		fix:     color.New(color.FgGreen, color.Bold),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.code, p.gutter, p.caret, p.removed, p.added, p.note, p.fix}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostic(s) not shown\n", n)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sevColor := p.sev[d.Severity]
	if sevColor == nil {
		sevColor = p.sev[diag.SevInfo]
	}
	file := fs.Get(d.Primary.File)
	if file == nil {
		fmt.Fprintf(w, "%s %s: %s\n", sevColor.Sprint(d.Severity.String()), p.code.Sprint(d.Code.ID()), d.Message)
		return
	}

	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", formatPath(file, fs, opts.PathMode), start.Line, start.Col),
		sevColor.Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	writeSnippet(w, file, start, end, p)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			if nf == nil {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
				continue
			}
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(nf, fs, opts.PathMode), ns.Line, ns.Col, n.Msg)
		}
	}
	if opts.ShowFixes || opts.ShowPreview {
		for _, f := range d.Fixes {
			writeFix(w, fs, f, opts, p)
		}
	}
}

func writeSnippet(w io.Writer, file *source.File, start, end source.LineCol, p palette) {
	line := file.GetLine(start.Line)
	num := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(num))

	fmt.Fprintf(w, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), line)

	// колонки байтовые, ширину меряем в ячейках терминала
	col := int(start.Col) - 1
	col = min(max(col, 0), len(line))
	lastCol := len(line)
	if end.Line == start.Line {
		lastCol = min(max(int(end.Col)-1, col), len(line))
	}
	width := max(runewidth.StringWidth(line[col:lastCol]), 1)
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "%s %s %s%s\n", pad, p.gutter.Sprint("|"), indent(line[:col]), p.caret.Sprint(underline))
}

// indent повторяет табы строки, остальное заменяет пробелами по ширине.
func indent(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func writeFix(w io.Writer, fs *source.FileSet, f diag.Fix, opts PrettyOpts, p palette) {
	title := f.Title
	if title == "" {
		title = "fix"
	}
	fmt.Fprintf(w, "  %s %s [%s]", p.fix.Sprint("fix:"), title, f.Applicability)
	if f.ID != "" {
		fmt.Fprintf(w, " (%s)", f.ID)
	}
	fmt.Fprintln(w)
	if !opts.ShowPreview {
		return
	}
	for _, e := range f.Edits {
		preview, err := buildFixEditPreview(fs, e)
		if err != nil {
			fmt.Fprintf(w, "    (preview unavailable: %v)\n", err)
			continue
		}
		for _, l := range preview.before {
			fmt.Fprintf(w, "    %s\n", p.removed.Sprint("- "+l))
		}
		for _, l := range preview.after {
			fmt.Fprintf(w, "    %s\n", p.added.Sprint("+ "+l))
		}
	}
}
