package fix

import (
	"errors"
	"fmt"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// OverlappingEditError: Edit intersects Conflict, an edit that was already
// accepted in the same pass. Edit is not applied.
type OverlappingEditError struct {
	Edit     Edit
	Conflict Edit
}

func (e *OverlappingEditError) Error() string {
	return fmt.Sprintf("edit %s at %s overlaps edit %s at %s", nameOf(e.Edit), e.Edit.Span, nameOf(e.Conflict), e.Conflict.Span)
}

// DuplicateEditError: Edit targets exactly the span of Kept, which came
// first. At most one replacement is applied per span.
type DuplicateEditError struct {
	Edit Edit
	Kept Edit
}

func (e *DuplicateEditError) Error() string {
	return fmt.Sprintf("edit %s at %s rewrites the same span as edit %s", nameOf(e.Edit), e.Edit.Span, nameOf(e.Kept))
}

// StaleEditError: the text under the span is not what the edit expected.
type StaleEditError struct {
	Edit Edit
	Got  string
}

func (e *StaleEditError) Error() string {
	return fmt.Sprintf("edit %s at %s: existing text %q does not match expected %q", nameOf(e.Edit), e.Edit.Span, e.Got, e.Edit.OldText)
}

// EditRangeError: the span does not fit the content.
type EditRangeError struct {
	Edit Edit
	Len  int
}

func (e *EditRangeError) Error() string {
	return fmt.Sprintf("edit %s at %s is out of range for %d bytes", nameOf(e.Edit), e.Edit.Span, e.Len)
}

func nameOf(e Edit) string {
	if e.ID == "" {
		return "(unnamed)"
	}
	return e.ID
}

// EditError is implemented by every error Rewrite reports for an edit.
type EditError interface {
	error
	Rejected() Edit
}

func (e *OverlappingEditError) Rejected() Edit { return e.Edit }
func (e *DuplicateEditError) Rejected() Edit   { return e.Edit }
func (e *StaleEditError) Rejected() Edit       { return e.Edit }
func (e *EditRangeError) Rejected() Edit       { return e.Edit }
