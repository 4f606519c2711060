// Package observ times a check run. The driver opens one phase per step
// (file discovery, loading, the match pass) and the CLI prints them with
// --timings.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Names of the phases the driver records.
const (
	PhaseList  = "list"
	PhaseLoad  = "load"
	PhaseCheck = "check"
)

// Phase is one step of a run. Note carries its size: "12 files", "4 jobs".
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer is not safe for concurrent use; the driver records phases from
// the calling goroutine only. Methods on a nil *Timer do nothing.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 3)} }

// Begin opens a phase; pass the result to End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary is the --timings block printed to stderr: one row per phase
// with its share of the run, then the total.
func (t *Timer) Summary() string {
	report := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-8s %8.2f ms %5.1f%%", p.Name, p.DurationMS, share(p.DurationMS, report.TotalMS))
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %-8s %8.2f ms\n", "total", report.TotalMS)
	return b.String()
}

func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * part / total
}

// PhaseReport is a finished phase with its duration in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: ms(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = ms(total)
	return report
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
