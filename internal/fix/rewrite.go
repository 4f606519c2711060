package fix

import (
	"sort"

	"deprecheck/internal/diag"
	"deprecheck/internal/source"
)

// Edit is a TextEdit tagged with the fix it belongs to.
type Edit struct {
	ID      string
	Span    source.Span
	NewText string
	OldText string
}

// EditFrom tags a diag.TextEdit with id.
func EditFrom(id string, e diag.TextEdit) Edit {
	return Edit{ID: id, Span: e.Span, NewText: e.NewText, OldText: e.OldText}
}

// RewriteResult is the outcome of one rewrite pass over one buffer.
type RewriteResult struct {
	Content []byte
	Applied []Edit
	// Failed holds one error per rejected edit: *OverlappingEditError,
	// *DuplicateEditError, *StaleEditError or *EditRangeError.
	Failed []error
}

// Rewrite applies edits to content in a single pass. All spans are offsets
// into content; Span.File is ignored.
//
// Edits are ordered by start offset, longer spans first, then by their
// position in edits. An edit is accepted when it fits content, its guard
// matches and it does not touch an already accepted edit. Because an outer
// call sorts before the calls nested in it, the outer rewrite wins and the
// nested one fails with *OverlappingEditError; for identical spans the first
// edit wins. Rejections never stop the pass. content is not modified.
func Rewrite(content []byte, edits []Edit) RewriteResult {
	ordered := append([]Edit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Span.Start != ordered[j].Span.Start {
			return ordered[i].Span.Start < ordered[j].Span.Start
		}
		return ordered[i].Span.End > ordered[j].Span.End
	})

	res := RewriteResult{}
	accepted := make([]Edit, 0, len(ordered))
	for _, e := range ordered {
		if err := check(content, accepted, e); err != nil {
			res.Failed = append(res.Failed, err)
			continue
		}
		accepted = append(accepted, e)
	}

	out := make([]byte, 0, len(content))
	prev := 0
	for _, e := range accepted {
		out = append(out, content[prev:e.Span.Start]...)
		out = append(out, e.NewText...)
		prev = int(e.Span.End)
	}
	out = append(out, content[prev:]...)

	res.Content = out
	res.Applied = accepted
	return res
}

// check validates e against content and the accepted edits. accepted is
// sorted by start and non-overlapping, so its ends never decrease and the
// scan can stop at the first edit ending before e starts.
func check(content []byte, accepted []Edit, e Edit) error {
	start, end := int(e.Span.Start), int(e.Span.End)
	if end < start || end > len(content) {
		return &EditRangeError{Edit: e, Len: len(content)}
	}
	if e.OldText != "" && string(content[start:end]) != e.OldText {
		return &StaleEditError{Edit: e, Got: string(content[start:end])}
	}
	for i := len(accepted) - 1; i >= 0; i-- {
		prev := accepted[i]
		if prev.Span.End < e.Span.Start {
			break
		}
		if prev.Span.Start == e.Span.Start && prev.Span.End == e.Span.End {
			return &DuplicateEditError{Edit: e, Kept: prev}
		}
		if overlaps(prev.Span, e.Span) {
			return &OverlappingEditError{Edit: e, Conflict: prev}
		}
	}
	return nil
}

// overlaps compares offsets only; edits of one pass share a buffer.
func overlaps(a, b source.Span) bool {
	a.File, b.File = 0, 0
	return a.Overlaps(b)
}
