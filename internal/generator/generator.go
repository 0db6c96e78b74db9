// Package generator runs the whole pipeline over the packages of a module:
// load, discover, validate, emit, write.
package generator

import (
	"context"
	"go/token"
	"log/slog"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/discovery"
	"github.com/cmmoran/collectiongen/internal/emit"
	"github.com/cmmoran/collectiongen/internal/loader"
	"github.com/cmmoran/collectiongen/internal/validate"
)

// Status describes what happened to a package's output file.
type Status uint8

const (
	// StatusNone means nothing rendered and no previous output existed.
	StatusNone Status = iota
	// StatusUnchanged means the rendered output matched the file on disk.
	StatusUnchanged
	// StatusWritten means the output was (or on a dry run would be) written.
	StatusWritten
	// StatusDeleted means previous output was (or would be) removed.
	StatusDeleted
	// StatusFailed means the package could not be rendered.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusUnchanged:
		return "unchanged"
	case StatusWritten:
		return "written"
	case StatusDeleted:
		return "deleted"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// PackageResult is the outcome for one package.
type PackageResult struct {
	Path        string
	Dir         string
	File        string // absolute path of the output file
	Content     []byte // nil when the package renders nothing
	Diagnostics []diag.Diagnostic
	Status      Status
	Err         error
}

// Result is the outcome of a run.
type Result struct {
	Module   loader.Module
	Fset     *token.FileSet
	Packages []*PackageResult
	// Orphans are previously generated files removed because no loaded
	// package claims them any more.
	Orphans []string
}

// Diagnostics returns the diagnostics of every package in package order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, p := range r.Packages {
		out = append(out, p.Diagnostics...)
	}
	return out
}

// HasErrors reports whether any package produced an error diagnostic.
func (r *Result) HasErrors() bool {
	for _, p := range r.Packages {
		for _, d := range p.Diagnostics {
			if d.Severity >= diag.SevError {
				return true
			}
		}
	}
	return false
}

// Generator runs the pipeline with fixed options.
type Generator struct {
	opts *Options
}

// New returns a generator for the given options.
func New(opts ...Option) *Generator {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	return FromOptions(o)
}

// FromOptions returns a generator for a fully populated Options value, such
// as one decoded from configuration.
func FromOptions(o *Options) *Generator {
	c := *o
	c.Patterns = append([]string(nil), o.Patterns...)
	c.Tags = append([]string(nil), o.Tags...)
	c.Normalize()
	return &Generator{opts: &c}
}

// Options returns a copy of the effective options.
func (g *Generator) Options() Options {
	return *g.opts
}

type unit struct {
	pkg  *packages.Package
	dir  string
	unit discovery.Unit
}

// Run loads the configured packages, renders their output and, unless the
// options ask for a dry run, writes it. The returned result is non-nil
// whenever loading succeeded.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	loaded, err := loader.Load(ctx, loader.Config{
		Dir:      g.opts.Dir,
		Patterns: g.opts.Patterns,
		Tags:     g.opts.Tags,
		Output:   g.opts.Output,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &LoadError{Dir: g.opts.Dir, Cause: err}
	}

	units := g.units(loaded)
	siblings := make([]discovery.Unit, len(units))
	for i, u := range units {
		siblings[i] = u.unit
	}

	result := &Result{
		Module:   loaded.Module,
		Fset:     loaded.Fset,
		Packages: make([]*PackageResult, len(units)),
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)
	for i, u := range units {
		eg.Go(func() error {
			pr, err := g.process(gctx, u, siblings)
			if err != nil {
				return err
			}
			result.Packages[i] = pr
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := g.write(ctx, loaded, result); err != nil {
		return result, err
	}

	var failed []error
	for _, p := range result.Packages {
		if p.Err != nil {
			failed = append(failed, p.Err)
		}
	}
	if len(failed) > 0 {
		return result, errors.Join(failed...)
	}
	if g.opts.FailOnError && result.HasErrors() {
		return result, errors.WithHint(ErrDiagnostics, "run `collectiongen lint` for details or pass --fail-on-error=false")
	}
	return result, nil
}

// units selects the main-module packages that carry type information.
func (g *Generator) units(loaded *loader.Result) []unit {
	var units []unit
	for _, p := range loaded.Packages {
		if !loaded.Module.InModule(p) {
			continue
		}
		if p.Types == nil || p.TypesInfo == nil || len(p.Syntax) == 0 {
			slog.Warn("skipping package without type information", "package", p.PkgPath)
			continue
		}
		if p.IllTyped {
			slog.Warn("package has type errors; continuing with partial information", "package", p.PkgPath, "errors", len(p.Errors))
		}
		units = append(units, unit{
			pkg: p,
			dir: loader.Dir(p),
			unit: discovery.Unit{
				Fset:  loaded.Fset,
				Files: p.Syntax,
				Pkg:   p.Types,
				Info:  p.TypesInfo,
			},
		})
	}
	return units
}

// process renders one package. Only context cancellation is returned as an
// error; everything else is recorded on the result.
func (g *Generator) process(ctx context.Context, u unit, siblings []discovery.Unit) (pr *PackageResult, err error) {
	pr = &PackageResult{
		Path: u.pkg.PkgPath,
		Dir:  u.dir,
		File: outputPath(u.dir, g.opts.Output),
	}
	defer func() {
		if r := recover(); r != nil {
			name := u.unit.Files[0].Name
			pr.Diagnostics = append(pr.Diagnostics, diag.New(diag.InternalError, name.Pos(), name.End(), pr.Path, r))
			pr.Content = nil
			pr.Status = StatusFailed
			pr.Err = &GenerationError{Package: pr.Path, Message: "internal error", Cause: errors.Newf("%v", r)}
			err = nil
		}
	}()

	reg, err := discovery.Discover(ctx, discovery.Input{Unit: u.unit, Siblings: siblings})
	if err != nil {
		return nil, err
	}
	report := validate.Validate(reg)
	pr.Diagnostics = append(pr.Diagnostics, report.Diagnostics.Items()...)
	if report.Plan.Empty() {
		return pr, nil
	}

	content, faults, err := emit.Render(report.Plan)
	for _, f := range faults {
		pr.Diagnostics = append(pr.Diagnostics, diag.New(diag.InternalError, f.Anchor.Pos(), f.Anchor.End(), f.Subject, f.Value))
	}
	if err != nil {
		pr.Status = StatusFailed
		pr.Err = &GenerationError{Package: pr.Path, File: pr.File, Message: "render", Cause: err}
		return pr, nil
	}
	pr.Content = content
	slog.Debug("rendered package", "package", pr.Path, "bytes", len(content), "diagnostics", len(pr.Diagnostics))
	return pr, nil
}
