package diagfmt

import (
	"fmt"
	"strings"

	"deprecheck/internal/diag"
	"deprecheck/internal/source"
)

// fixEditPreview holds the full lines touched by an edit, before and after.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	if fs == nil {
		return fixEditPreview{}, fmt.Errorf("nil FileSet")
	}
	file := fs.Get(edit.Span.File)
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("file %d not found in FileSet", edit.Span.File)
	}
	if edit.Span.End < edit.Span.Start || int(edit.Span.End) > len(file.Content) {
		return fixEditPreview{}, fmt.Errorf("edit span %v out of range", edit.Span)
	}

	startPos, endPos := fs.Resolve(edit.Span)
	from, _, ok := file.LineBounds(startPos.Line)
	if !ok {
		return fixEditPreview{}, fmt.Errorf("line %d not found", startPos.Line)
	}
	_, to, ok := file.LineBounds(max(endPos.Line, startPos.Line))
	if !ok {
		return fixEditPreview{}, fmt.Errorf("line %d not found", endPos.Line)
	}

	// строки целиком: префикс до правки, новый текст, хвост после
	head := string(file.Content[from:edit.Span.Start])
	tail := string(file.Content[edit.Span.End:to])
	return fixEditPreview{
		before: previewLines(string(file.Content[from:to])),
		after:  previewLines(head + edit.NewText + tail),
	}, nil
}

func previewLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
