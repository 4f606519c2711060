package fix

// todo: --since <rev> to restrict fixes to files changed since a git revision.

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"deprecheck/internal/diag"
	"deprecheck/internal/source"
)

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	// ApplyModeOnce applies the first fix in position order, preferring
	// always-safe ones.
	ApplyModeOnce ApplyMode = iota
	// ApplyModeAll applies every always-safe fix.
	ApplyModeAll
	// ApplyModeID applies the single fix named by TargetID.
	ApplyModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes the rewritten contents without touching the disk.
	DryRun bool
	Logger *slog.Logger
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a fix that was not applied. Err is set when the
// rewriter rejected one of its edits.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
	Err    error
}

// FileChange is the new content of one touched file.
type FileChange struct {
	Path      string
	EditCount int
	Content   []byte
}

type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

func (c candidate) skip(reason string, err error) SkippedFix {
	return SkippedFix{ID: c.fix.ID, Title: c.fix.Title, Reason: reason, Err: err}
}

// Apply collects fixes from diagnostics, selects a subset according to opts
// and rewrites the affected files. ErrNoFixes is returned when nothing was
// applied; the result still lists what was skipped.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	res := &ApplyResult{
		Applied:     []AppliedFix{},
		Skipped:     []SkippedFix{},
		FileChanges: []FileChange{},
	}
	if fs == nil {
		return res, errors.New("fix: FileSet is nil")
	}
	s := session{fs: fs, opts: opts, logger: opts.Logger, res: res}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	defer s.logSkips()

	cands, skips := gatherCandidates(diagnostics)
	res.Skipped = append(res.Skipped, skips...)
	sortCandidates(cands)

	selected := s.selectCandidates(cands)
	if len(selected) == 0 {
		return res, ErrNoFixes
	}
	if err := s.apply(selected); err != nil {
		return res, err
	}
	if len(res.Applied) == 0 {
		return res, ErrNoFixes
	}
	return res, nil
}

type session struct {
	fs     *source.FileSet
	opts   ApplyOptions
	logger *slog.Logger
	res    *ApplyResult
}

func (s *session) logSkips() {
	for _, sk := range s.res.Skipped {
		s.logger.Info("fix skipped", "id", sk.ID, "title", sk.Title, "reason", sk.Reason)
	}
}

// gatherCandidates flattens the fixes of diagnostics in report order.
// Fixes without edits and repeated IDs are skipped; a fix without an ID
// gets one derived from the diagnostic code, primary span and fix index.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var (
		cands []candidate
		skips []SkippedFix
		seen  = make(map[string]bool)
	)
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			if f.ID == "" && len(f.Edits) > 0 {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
			}
			c := candidate{diag: d, fix: f, order: len(cands)}
			switch {
			case len(f.Edits) == 0:
				skips = append(skips, c.skip("fix has no edits", nil))
			case seen[f.ID]:
				skips = append(skips, c.skip("duplicate fix id", nil))
			default:
				seen[f.ID] = true
				cands = append(cands, c)
			}
		}
	}
	return cands, skips
}

// sortCandidates orders by file and primary span; report order breaks ties,
// so on one call the rule listed first wins.
func sortCandidates(cands []candidate) {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		pa, pb := a.diag.Primary, b.diag.Primary
		return cmp.Or(
			cmp.Compare(pa.File, pb.File),
			cmp.Compare(pa.Start, pb.Start),
			cmp.Compare(pa.End, pb.End),
			cmp.Compare(a.order, b.order),
		)
	})
}

func (s *session) selectCandidates(cands []candidate) []candidate {
	safe := func(c candidate) bool { return c.fix.Applicability == diag.FixApplicabilityAlwaysSafe }

	switch s.opts.Mode {
	case ApplyModeID:
		if i := slices.IndexFunc(cands, func(c candidate) bool { return c.fix.ID == s.opts.TargetID }); i >= 0 {
			return cands[i : i+1]
		}
		s.res.Skipped = append(s.res.Skipped, SkippedFix{ID: s.opts.TargetID, Reason: "fix id not found"})
	case ApplyModeAll:
		var selected []candidate
		for _, c := range cands {
			if safe(c) {
				selected = append(selected, c)
				continue
			}
			s.res.Skipped = append(s.res.Skipped, c.skip("applicability is "+c.fix.Applicability.String(), nil))
		}
		return selected
	case ApplyModeOnce:
		if len(cands) == 0 {
			return nil
		}
		if i := slices.IndexFunc(cands, safe); i >= 0 {
			return cands[i : i+1]
		}
		return cands[:1]
	}
	return nil
}

// apply rewrites every touched file with the edits of the live candidates.
// A fix is atomic: when one of its edits is rejected the whole fix is
// dropped and the files are rewritten again without it.
func (s *session) apply(selected []candidate) error {
	live := make([]candidate, 0, len(selected))
	for _, c := range selected {
		if reason := s.unusableTarget(c.fix); reason != "" {
			s.res.Skipped = append(s.res.Skipped, c.skip(reason, nil))
			continue
		}
		live = append(live, c)
	}

	var rewritten map[source.FileID]RewriteResult
	for len(live) > 0 {
		var rejected map[string]error
		rewritten, rejected = s.rewrite(live)
		if len(rejected) == 0 {
			break
		}
		live = slices.DeleteFunc(live, func(c candidate) bool {
			err, ok := rejected[c.fix.ID]
			if ok {
				s.res.Skipped = append(s.res.Skipped, c.skip(err.Error(), err))
			}
			return ok
		})
	}
	if len(live) == 0 {
		return nil
	}

	for _, c := range live {
		s.res.Applied = append(s.res.Applied, AppliedFix{
			ID:            c.fix.ID,
			Title:         c.fix.Title,
			Code:          c.diag.Code,
			Message:       c.diag.Message,
			Applicability: c.fix.Applicability,
			PrimaryPath:   s.displayPath(c.diag.Primary.File, "auto"),
			EditCount:     len(c.fix.Edits),
		})
	}
	return s.commit(rewritten)
}

// rewrite runs one pass over all files and returns the first rejection
// per fix ID.
func (s *session) rewrite(live []candidate) (map[source.FileID]RewriteResult, map[string]error) {
	byFile := make(map[source.FileID][]Edit)
	for _, c := range live {
		for _, e := range c.fix.Edits {
			byFile[e.Span.File] = append(byFile[e.Span.File], EditFrom(c.fix.ID, e))
		}
	}

	out := make(map[source.FileID]RewriteResult, len(byFile))
	rejected := make(map[string]error)
	for id, edits := range byFile {
		r := Rewrite(s.fs.Get(id).Content, edits)
		out[id] = r
		for _, err := range r.Failed {
			var ee EditError
			if !errors.As(err, &ee) {
				continue
			}
			if _, ok := rejected[ee.Rejected().ID]; !ok {
				rejected[ee.Rejected().ID] = err
			}
		}
	}
	return out, rejected
}

// commit записывает новое содержимое (кроме dry-run) и собирает FileChanges.
func (s *session) commit(rewritten map[source.FileID]RewriteResult) error {
	for id, r := range rewritten {
		file := s.fs.Get(id)
		if !s.opts.DryRun {
			if err := writePreservingMode(file.Path, r.Content); err != nil {
				return err
			}
			s.logger.Debug("file rewritten", "path", file.Path, "edits", len(r.Applied))
		}
		s.res.FileChanges = append(s.res.FileChanges, FileChange{
			Path:      s.displayPath(id, "relative"),
			EditCount: len(r.Applied),
			Content:   r.Content,
		})
	}
	slices.SortFunc(s.res.FileChanges, func(a, b FileChange) int { return strings.Compare(a.Path, b.Path) })
	return nil
}

func writePreservingMode(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// unusableTarget explains why a fix cannot touch its files, or returns "".
func (s *session) unusableTarget(f diag.Fix) string {
	for _, e := range f.Edits {
		file := s.fs.Get(e.Span.File)
		if file == nil {
			return fmt.Sprintf("unknown file id %d", e.Span.File)
		}
		if file.Flags&source.FileVirtual != 0 && !s.opts.DryRun {
			return "target file is virtual"
		}
	}
	return ""
}

func (s *session) displayPath(id source.FileID, mode string) string {
	file := s.fs.Get(id)
	if file == nil {
		return ""
	}
	return file.FormatPath(mode, s.fs.BaseDir())
}
