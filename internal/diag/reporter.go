package diag

// Reporter receives diagnostics from the checker and the front-end.
type Reporter interface {
	Report(d Diagnostic)
}

// Emit отправляет d в r; nil-репортер молча игнорируется.
func Emit(r Reporter, d Diagnostic) {
	if r != nil {
		r.Report(d)
	}
}

// BagReporter stores everything it receives in Bag, subject to its limit.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

