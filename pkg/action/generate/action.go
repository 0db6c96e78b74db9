package generate

import (
	"context"
	"log/slog"

	"github.com/cmmoran/collectiongen/internal/generator"
)

// Summary counts what a run did to the output files.
type Summary struct {
	Written   int
	Unchanged int
	Deleted   int
	Failed    int
	Orphans   int
}

// Generate runs the generator for opts and logs one line per touched file.
// The result is returned even when err is non-nil so that callers can
// report diagnostics.
func Generate(ctx context.Context, opts *generator.Options) (*generator.Result, error) {
	g := generator.FromOptions(opts)
	res, err := g.Run(ctx)
	if res == nil {
		return nil, err
	}

	dry := g.Options().DryRun
	for _, p := range res.Packages {
		switch p.Status {
		case generator.StatusWritten, generator.StatusDeleted:
			slog.Info("output "+p.Status.String(), "package", p.Path, "file", p.File, "dry_run", dry)
		case generator.StatusFailed:
			slog.Error("output failed", "package", p.Path, "error", p.Err)
		default:
			slog.Debug("output "+p.Status.String(), "package", p.Path)
		}
	}
	for _, o := range res.Orphans {
		slog.Info("orphaned output removed", "file", o)
	}
	s := Summarize(res)
	slog.Info("generation finished",
		"packages", len(res.Packages),
		"written", s.Written,
		"unchanged", s.Unchanged,
		"deleted", s.Deleted,
		"failed", s.Failed,
		"orphans", s.Orphans,
	)
	return res, err
}

// Summarize counts the statuses in res.
func Summarize(res *generator.Result) Summary {
	var s Summary
	for _, p := range res.Packages {
		switch p.Status {
		case generator.StatusWritten:
			s.Written++
		case generator.StatusUnchanged:
			s.Unchanged++
		case generator.StatusDeleted:
			s.Deleted++
		case generator.StatusFailed:
			s.Failed++
		}
	}
	s.Orphans = len(res.Orphans)
	return s
}
