package diag

import (
	"testing"

	"deprecheck/internal/source"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		b.Add(NewWarning(DeprecatedMethod, source.Span{Start: uint32(i)}, "w"))
	}
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("Len=%d Dropped=%d, want 2 and 1", b.Len(), b.Dropped())
	}
	if !b.HasAtLeast(SevWarning) || b.HasAtLeast(SevError) {
		t.Fatalf("unexpected HasAtLeast results")
	}

	unlimited := NewBag(0)
	for range 100 {
		unlimited.Add(NewWarning(DeprecatedMethod, source.Span{}, "w"))
	}
	if unlimited.Len() != 100 || unlimited.Dropped() != 0 {
		t.Fatalf("unlimited bag: Len=%d Dropped=%d", unlimited.Len(), unlimited.Dropped())
	}
}

func TestBagSort(t *testing.T) {
	b := NewBag(0)
	span := source.Span{Start: 10, End: 15}
	b.Add(NewWarning(DeprecatedMethod, span, "`File.exists?` is deprecated in favor of `File.file?`."))
	b.Add(NewWarning(DeprecatedMethod, source.Span{Start: 0, End: 4}, "first"))
	b.Add(NewWarning(DeprecatedMethod, span, "`File.exists?` is deprecated in favor of `File.exist?`."))
	b.Add(NewError(SynParseError, span, "parse"))
	b.Add(NewWarning(DeprecatedMethod, source.Span{File: 1}, "other file"))

	b.Sort()
	var got []string
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	want := []string{
		"first",
		"parse",
		"`File.exists?` is deprecated in favor of `File.file?`.",
		"`File.exists?` is deprecated in favor of `File.exist?`.",
		"other file",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %q, want %q", got, want)
		}
	}
}

func TestWithFixDoesNotAlias(t *testing.T) {
	base := NewWarning(DeprecatedMethod, source.Span{}, "m")
	a := base.WithFix("a", TextEdit{NewText: "a"})
	bb := a.WithFix("b", TextEdit{NewText: "b"})
	c := a.WithFix("c", TextEdit{NewText: "c"})
	if len(a.Fixes) != 1 || bb.Fixes[1].Title != "b" || c.Fixes[1].Title != "c" {
		t.Fatalf("fix slices must not alias: %+v / %+v", bb.Fixes, c.Fixes)
	}
	if a.Fixes[0].Applicability != FixApplicabilityAlwaysSafe || a.Fixes[0].Kind != FixKindQuickFix {
		t.Fatalf("WithFix must produce an always-safe quick fix")
	}
}

func TestEmitToBagAndNop(t *testing.T) {
	bag := NewBag(0)
	d := NewWarning(DeprecatedMethod, source.Span{}, "m")
	Emit(BagReporter{Bag: bag}, d)
	Emit(NopReporter{}, d)
	Emit(nil, d)
	Emit(BagReporter{}, d)
	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
}
