package cmd

import (
	"fmt"
	"go/token"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/fixes"
	"github.com/cmmoran/collectiongen/pkg/action/check"
	"github.com/cmmoran/collectiongen/pkg/analyzers"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	fileColor    = color.New(color.Bold)
	fixColor     = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
)

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	}
	return infoColor
}

// printDiagnostics writes one line per diagnostic:
//
//	path/file.go:12:6: error ENH008: collection ... [collectionname]
//
// Positions are made relative to base when possible.
func printDiagnostics(w io.Writer, fset *token.FileSet, base string, ds []diag.Diagnostic, withAnalyzer bool) {
	for _, d := range ds {
		pos := d.Position(fset)
		loc := "-"
		if pos.IsValid() {
			file := pos.Filename
			if rel, err := filepath.Rel(base, file); err == nil {
				file = rel
			}
			loc = fmt.Sprintf("%s:%d:%d", file, pos.Line, pos.Column)
		}
		_, _ = fmt.Fprintf(w, "%s: %s %s",
			fileColor.Sprint(loc),
			severityColor(d.Severity).Sprint(d.Severity.String()),
			d.String(),
		)
		if withAnalyzer {
			if a := analyzers.Owner(d.ID); a != nil {
				_, _ = fmt.Fprintf(w, " %s", dimColor.Sprintf("[%s]", a.Name))
			}
		}
		if len(d.Fixes) > 0 {
			_, _ = fmt.Fprintf(w, " %s", fixColor.Sprint("(fixable)"))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func printDrift(w io.Writer, drift []check.Drift) {
	for _, d := range drift {
		_, _ = fmt.Fprintf(w, "%s %s (%s)\n", warningColor.Sprint("stale"), fileColor.Sprint(d.File), d.Package)
		if d.Diff != "" {
			_, _ = fmt.Fprintln(w, d.Diff)
		}
	}
}

func printApplyResult(w io.Writer, res *fixes.ApplyResult) {
	if len(res.Applied) > 0 {
		_, _ = fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			_, _ = fmt.Fprintf(w, "  %s [%s] %s (%d edits)\n", fixColor.Sprint(item.Title), item.ID, item.Path, item.EditCount)
		}
	}
	if len(res.FileChanges) > 0 {
		_, _ = fmt.Fprintln(w, "Updated files:")
		for _, change := range res.FileChanges {
			_, _ = fmt.Fprintf(w, "  %s (%d edits)\n", fileColor.Sprint(change.Path), change.EditCount)
		}
	}
	if len(res.Skipped) > 0 {
		_, _ = fmt.Fprintln(w, "Skipped fixes:")
		for _, skip := range res.Skipped {
			_, _ = fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, skip.ID, warningColor.Sprint(skip.Reason))
		}
	}
}

// printError writes err and any hints attached to it.
func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		_, _ = fmt.Fprintf(w, "%s %s\n", infoColor.Sprint("hint:"), hint)
	}
}
