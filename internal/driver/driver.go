// Package driver runs the lowering stage over program exports: it loads each
// export, builds the semantics policy and the body compiler, compiles the
// programs in parallel and hands the results to the output writers.
package driver

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scriptc/internal/bodyc"
	"scriptc/internal/compiler"
	"scriptc/internal/config"
	"scriptc/internal/diag"
	"scriptc/internal/logging"
	"scriptc/internal/observ"
	"scriptc/internal/policy"
	"scriptc/internal/program"
	"scriptc/internal/source"
	"scriptc/internal/trace"
)

// Options configure Run. The zero value compiles with the default config.
type Options struct {
	Config config.Config

	// Jobs limits how many programs compile at once; <= 0 means GOMAXPROCS.
	Jobs int
	// Timings appends an OBS timing diagnostic to every result.
	Timings bool

	// Bodies overrides the textual body compiler.
	Bodies   bodyc.Factory
	Observer compiler.Observer
	Phases   PhaseObserver

	Logger *zap.Logger
	Tracer trace.Tracer
}

// Result is the outcome of one program export.
type Result struct {
	Path    string
	Program *program.Program // nil when the export failed to load
	Output  *compiler.Result // nil when the export failed to load
	Bag     *diag.Bag
	Timing  *observ.Report
}

// Name returns the program name, or the export path when loading failed.
func (r *Result) Name() string {
	if r.Program != nil {
		return r.Program.Name
	}
	return r.Path
}

// FileSet returns the files diagnostics of r point into.
func (r *Result) FileSet() *source.FileSet {
	if r.Program != nil && r.Program.Files != nil {
		return r.Program.Files
	}
	return source.NewFileSet()
}

func (r *Result) HasErrors() bool {
	return r != nil && r.Bag.HasErrors()
}

// HasErrors reports whether any result carries an error diagnostic.
func HasErrors(results []*Result) bool {
	for _, r := range results {
		if r.HasErrors() {
			return true
		}
	}
	return false
}

// Run compiles every export in paths. Results come back in input order. The
// returned error is reserved for cancellation and broken invariants; program
// problems, including unreadable exports, are diagnostics.
func Run(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	if opts.Config.Output.Format == "" {
		opts.Config = config.Default()
	}
	if opts.Bodies == nil {
		opts.Bodies = bodyc.Textual{}
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	opts.Logger = logging.OrNop(opts.Logger).With(zap.String(logging.FieldComponent, "driver"))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	span := trace.Begin(opts.Tracer, trace.ScopeDriver, "run", trace.CurrentSpan(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := compileOne(gctx, path, &opts)
			// индекс i уникален, мьютекс не нужен
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// compileOne loads and compiles one export. Contract violations escaping the
// compiler are turned into errors so that one broken program does not take
// the process down with it.
func compileOne(ctx context.Context, path string, opts *Options) (res *Result, err error) {
	started := time.Now()
	opts.Phases.emit(PhaseEvent{Program: path, Status: PhaseStart})
	log := opts.Logger.With(zap.String(logging.FieldProgram, path))

	res = &Result{Path: path, Bag: diag.NewBag(opts.Config.Output.MaxDiagnostics)}
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = errors.Wrapf(e, "compiling %s", path)
			} else {
				err = errors.AssertionFailedf("compiling %s: %v", path, rec)
			}
			log.Error("compiler contract violation", zap.Error(err))
		}
		opts.Phases.emit(PhaseEvent{
			Program: path,
			Status:  PhaseEnd,
			Elapsed: time.Since(started),
			Errors:  res.Bag.ErrorCount(),
		})
	}()

	timer := observ.NewTimer()
	done := timer.Track("load")
	prog, loadErr := program.Load(path)
	done("")
	if loadErr != nil {
		log.Debug("load failed", zap.Error(loadErr))
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
			diag.IOLoadFileError.Sprintf(path, loadErr)))
		return res, nil
	}
	res.Program = prog

	c := compiler.New(compiler.Options{
		Policy:                  policy.NewDefault(prog.Symbols, opts.Config.PolicyOptions()),
		Bodies:                  opts.Bodies,
		AllowUserDefinedStructs: opts.Config.Policy.AllowUserDefinedStructs,
		MaxDiagnostics:          opts.Config.Output.MaxDiagnostics,
		Observer:                opts.Observer,
		Logger:                  opts.Logger,
		Tracer:                  opts.Tracer,
		Timer:                   timer,
	})
	out, err := c.Compile(ctx, prog)
	if err != nil {
		return res, errors.Wrapf(err, "compiling %s", path)
	}
	res.Output = out
	res.Bag = out.Diagnostics
	res.Bag.Sort()

	report := timer.Report()
	res.Timing = &report
	if opts.Timings {
		addTimings(res.Bag, timingDiagnostic(res.Name(), report))
		log.Debug("timings", zap.Stringer("report", report))
	}
	log.Debug("program compiled",
		zap.Int(logging.FieldCount, len(out.Forest.Classes)),
		zap.Int(logging.FieldErrors, res.Bag.ErrorCount()),
		zap.Duration(logging.FieldDuration, time.Since(started)),
	)
	return res, nil
}
