package check

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/cmmoran/collectiongen/internal/generator"
)

// Drift is one output file that does not match what would be generated.
type Drift struct {
	Package string
	File    string
	Status  generator.Status // StatusWritten or StatusDeleted
	Diff    string           // -on disk +generated
}

// Report is the outcome of a check.
type Report struct {
	Result *generator.Result
	Drift  []Drift
}

// Clean reports whether every output file is up to date.
func (r *Report) Clean() bool {
	return len(r.Drift) == 0
}

// Check regenerates in memory and compares the result with the files on
// disk. Nothing is written. Diagnostics errors are returned alongside the
// report.
func Check(ctx context.Context, opts *generator.Options) (*Report, error) {
	o := *opts
	o.DryRun = true
	res, runErr := generator.FromOptions(&o).Run(ctx)
	if res == nil {
		return nil, runErr
	}

	report := &Report{Result: res}
	for _, p := range res.Packages {
		switch p.Status {
		case generator.StatusWritten, generator.StatusDeleted:
		default:
			continue
		}
		existing, err := os.ReadFile(p.File)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return report, errors.Wrapf(err, "read %s", p.File)
		}
		report.Drift = append(report.Drift, Drift{
			Package: p.Path,
			File:    p.File,
			Status:  p.Status,
			Diff:    cmp.Diff(string(existing), string(p.Content)),
		})
	}
	return report, runErr
}
