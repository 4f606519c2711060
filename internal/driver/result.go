package driver

import (
	"deprecheck/internal/diag"
	"deprecheck/internal/observ"
	"deprecheck/internal/source"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path       string
	FileID     source.FileID
	Bag        *diag.Bag
	Matches    int
	LoadFailed bool
}

// Result is the outcome of a check run. Files keep the sorted path order.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	// Timer is nil unless Options.EnableTimings was set.
	Timer *observ.Timer
}

// Bag merges the per-file bags into one bag capped at limit (<= 0 unlimited),
// in file order.
func (r *Result) Bag(limit int) *diag.Bag {
	out := diag.NewBag(limit)
	for _, f := range r.Files {
		if f.Bag == nil {
			continue
		}
		for _, d := range f.Bag.Items() {
			out.Add(d)
		}
	}
	return out
}

// Diagnostics returns every diagnostic in file order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	return r.Bag(0).Items()
}

// Matches counts deprecated calls found across files.
func (r *Result) Matches() int {
	n := 0
	for _, f := range r.Files {
		n += f.Matches
	}
	return n
}
