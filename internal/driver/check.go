package driver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"deprecheck/internal/config"
	"deprecheck/internal/cop"
	"deprecheck/internal/diag"
	"deprecheck/internal/observ"
	"deprecheck/internal/rubyparse"
	"deprecheck/internal/rules"
	"deprecheck/internal/source"
)

// Options configure a check run.
type Options struct {
	// RuleSet defaults to rules.Default().
	RuleSet  *rules.RuleSet
	Severity diag.Severity
	// MaxDiagnostics caps each file's bag; <= 0 is unlimited.
	MaxDiagnostics int
	// Jobs bounds the number of files checked at once; <= 0 uses GOMAXPROCS.
	Jobs int
	// Config selects files in directory mode; nil uses config.Default.
	Config *config.Config
	Logger *slog.Logger
	// EnableTimings fills Result.Timer.
	EnableTimings bool
}

// DefaultOptions reports offences as warnings with the builtin rules.
func DefaultOptions() Options {
	return Options{Severity: diag.SevWarning}
}

func (o Options) ruleSet() *rules.RuleSet {
	if o.RuleSet == nil {
		return rules.Default()
	}
	return o.RuleSet
}

func (o Options) timer() *observ.Timer {
	if !o.EnableTimings {
		return nil
	}
	return observ.NewTimer()
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Diagnose checks path, which may be a file or a directory.
func Diagnose(ctx context.Context, path string, opts Options) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return DiagnoseDir(ctx, path, opts)
	}
	return DiagnoseFile(ctx, path, opts)
}

// DiagnoseFile checks a single file. Include/exclude globs do not apply.
func DiagnoseFile(ctx context.Context, path string, opts Options) (*Result, error) {
	timer := opts.timer()
	fs := source.NewFileSet()
	phase := timer.Begin(observ.PhaseLoad)
	fileID, err := fs.Load(path)
	timer.End(phase, "")
	if err != nil {
		return nil, err
	}

	p := rubyparse.New()
	defer p.Close()

	phase = timer.Begin(observ.PhaseCheck)
	res, err := checkFile(ctx, p, fs.Get(fileID), opts)
	timer.End(phase, "")
	if err != nil {
		return nil, err
	}
	return &Result{FileSet: fs, Files: []FileResult{res}, Timer: timer}, nil
}

// DiagnoseDir checks every selected file under dir in parallel. Files are
// loaded up front, so workers only read the FileSet. Load failures become
// IO diagnostics; a parse failure stops the run.
func DiagnoseDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default(dir)
	}
	timer := opts.timer()
	phase := timer.Begin(observ.PhaseList)
	files, err := ListFiles(dir, cfg)
	timer.End(phase, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}

	phase = timer.Begin(observ.PhaseLoad)
	fileSet := source.NewFileSetWithBase(dir)
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error)
	for _, p := range files {
		id, loadErr := fileSet.Load(p)
		if loadErr != nil {
			// пустая запись, чтобы диагностике было на что указать
			id = fileSet.Add(p, nil, source.FileVirtual)
			loadErrors[p] = loadErr
		}
		fileIDs[p] = id
	}

	timer.End(phase, "")

	if len(files) == 0 {
		return &Result{FileSet: fileSet, Timer: timer}, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger := opts.logger()
	logger.Debug("checking directory", "dir", dir, "files", len(files), "jobs", jobs)

	phase = timer.Begin(observ.PhaseCheck)
	workers := min(jobs, len(files))
	// tree-sitter парсер не потокобезопасен: по одному на воркер
	parsers := make(chan *rubyparse.Parser, workers)
	for range workers {
		parsers <- rubyparse.New()
	}
	defer func() {
		close(parsers)
		for p := range parsers {
			p.Close()
		}
	}()

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadErr := loadErrors[path]; hadErr {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.NewError(diag.IOLoadFail, source.Span{File: fileIDs[path]}, "failed to load file: "+loadErr.Error()))
				results[i] = FileResult{Path: path, FileID: fileIDs[path], Bag: bag, LoadFailed: true}
				return nil
			}

			p := <-parsers
			defer func() { parsers <- p }()

			res, err := checkFile(gctx, p, fileSet.Get(fileIDs[path]), opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	err = g.Wait()
	timer.End(phase, fmt.Sprintf("%d jobs", workers))
	return &Result{FileSet: fileSet, Files: results, Timer: timer}, err
}

// checkFile parses file and runs the whole match pass over it.
func checkFile(ctx context.Context, p *rubyparse.Parser, file *source.File, opts Options) (FileResult, error) {
	tree, err := p.Parse(ctx, file)
	if err != nil {
		return FileResult{}, fmt.Errorf("parse %s: %w", file.Path, err)
	}

	bag := diag.NewBag(opts.MaxDiagnostics)
	n := cop.Check(tree, opts.ruleSet(), diag.BagReporter{Bag: bag}, cop.Options{Severity: opts.Severity})
	bag.Sort()

	opts.logger().Debug("checked file", "path", file.Path, "matches", n, "parse_errors", len(tree.Errors))
	return FileResult{Path: file.Path, FileID: file.ID, Bag: bag, Matches: n}, nil
}
