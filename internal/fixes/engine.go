// Package fixes applies the suggested fixes attached to diagnostics.
//
// Every fix is applied against the original file contents. Identical edits
// offered by several fixes collapse into one; a fix with an edit overlapping
// a different edit is skipped together with the fix it overlaps, so the
// outcome does not depend on the order diagnostics were reported in.
package fixes

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"log/slog"
	"os"
	"slices"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/cmmoran/collectiongen/internal/diag"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// Options selects and applies fixes.
type Options struct {
	// IDs restricts fixing to diagnostics with these IDs. Empty means all.
	IDs []diag.ID
	// DryRun computes the new contents without writing them.
	DryRun bool
}

// AppliedFix records a fix whose edits are part of the result.
type AppliedFix struct {
	ID        diag.ID
	Title     string
	Path      string
	EditCount int
}

// SkippedFix records a fix that was not applied and why.
type SkippedFix struct {
	ID     diag.ID
	Title  string
	Reason string
}

// FileChange summarises the edits made to one file.
type FileChange struct {
	Path      string
	EditCount int
	// Content is the new file content. It is only set on dry runs.
	Content []byte
}

// ApplyResult aggregates applied fixes, skipped ones and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

type edit struct {
	path       string
	start, end int
	text       string
}

func (e edit) conflicts(o edit) bool {
	if e.path != o.path {
		return false
	}
	if e == o {
		return false
	}
	if e.start == e.end && o.start == o.end {
		return e.start == o.start
	}
	if e.start == e.end {
		return o.start <= e.start && e.start < o.end
	}
	if o.start == o.end {
		return e.start <= o.start && o.start < e.end
	}
	return e.start < o.end && o.start < e.end
}

type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	edits []edit
	path  string
}

// Apply applies the fixes of diagnostics resolved against fset.
func Apply(fset *token.FileSet, diagnostics []diag.Diagnostic, opts Options) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fset == nil {
		return result, errors.New("fixes: FileSet is nil")
	}

	cands := gather(fset, diagnostics, opts, result)
	if len(cands) == 0 {
		return result, ErrNoFixes
	}

	kept := resolveConflicts(cands, result)
	if len(kept) == 0 {
		return result, ErrNoFixes
	}

	byFile := make(map[string][]edit)
	for _, c := range kept {
		for _, e := range c.edits {
			if !slices.Contains(byFile[e.path], e) {
				byFile[e.path] = append(byFile[e.path], e)
			}
		}
	}

	staged := make(map[string][]byte, len(byFile))
	for path, edits := range byFile {
		src, err := os.ReadFile(path)
		if err != nil {
			return result, errors.Wrapf(err, "read %s", path)
		}
		out, err := splice(src, edits)
		if err != nil {
			return result, errors.Wrapf(err, "apply fixes to %s", path)
		}
		staged[path] = out
	}

	for _, c := range kept {
		result.Applied = append(result.Applied, AppliedFix{
			ID:        c.diag.ID,
			Title:     c.fix.Title,
			Path:      c.path,
			EditCount: len(c.edits),
		})
	}

	paths := make([]string, 0, len(staged))
	for path := range staged {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		change := FileChange{Path: path, EditCount: len(byFile[path])}
		if opts.DryRun {
			change.Content = staged[path]
		} else if err := write(path, staged[path]); err != nil {
			return result, err
		}
		result.FileChanges = append(result.FileChanges, change)
	}
	return result, nil
}

func gather(fset *token.FileSet, diagnostics []diag.Diagnostic, opts Options, result *ApplyResult) []*candidate {
	var cands []*candidate
	for _, d := range diagnostics {
		if len(opts.IDs) > 0 && !slices.Contains(opts.IDs, d.ID) {
			continue
		}
		for _, f := range d.Fixes {
			if len(f.Edits) == 0 {
				result.Skipped = append(result.Skipped, SkippedFix{ID: d.ID, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			c := &candidate{diag: d, fix: f, path: d.Position(fset).Filename}
			reason := ""
			for _, te := range f.Edits {
				e, err := resolve(fset, te)
				if err != nil {
					reason = err.Error()
					break
				}
				c.edits = append(c.edits, e)
			}
			if reason != "" {
				result.Skipped = append(result.Skipped, SkippedFix{ID: d.ID, Title: f.Title, Reason: reason})
				continue
			}
			cands = append(cands, c)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i].edits[0], cands[j].edits[0]
		if a.path != b.path {
			return a.path < b.path
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return cands[i].diag.ID < cands[j].diag.ID
	})
	return cands
}

func resolve(fset *token.FileSet, te diag.TextEdit) (edit, error) {
	if !te.Pos.IsValid() || te.End < te.Pos {
		return edit{}, errors.New("edit span is invalid")
	}
	f := fset.File(te.Pos)
	if f == nil || fset.File(te.End) != f {
		return edit{}, errors.New("edit span crosses files")
	}
	return edit{
		path:  f.Name(),
		start: f.Offset(te.Pos),
		end:   f.Offset(te.End),
		text:  te.NewText,
	}, nil
}

// resolveConflicts drops every candidate with an edit overlapping a
// different edit of another candidate.
func resolveConflicts(cands []*candidate, result *ApplyResult) []*candidate {
	conflicted := make([]bool, len(cands))
	for i := range cands {
		for j := i + 1; j < len(cands); j++ {
			if overlaps(cands[i], cands[j]) {
				conflicted[i], conflicted[j] = true, true
			}
		}
	}
	var kept []*candidate
	for i, c := range cands {
		if conflicted[i] {
			result.Skipped = append(result.Skipped, SkippedFix{
				ID:     c.diag.ID,
				Title:  c.fix.Title,
				Reason: fmt.Sprintf("conflicts with another fix in %s", c.path),
			})
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

func overlaps(a, b *candidate) bool {
	for _, x := range a.edits {
		for _, y := range b.edits {
			if x.conflicts(y) {
				return true
			}
		}
	}
	return false
}

// splice applies non-overlapping edits to src from the end backwards.
func splice(src []byte, edits []edit) ([]byte, error) {
	edits = slices.Clone(edits)
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start > edits[j].start
		}
		return edits[i].end > edits[j].end
	})
	out := slices.Clone(src)
	for _, e := range edits {
		if e.start < 0 || e.end < e.start || e.end > len(out) {
			return nil, errors.Newf("edit span [%d,%d) out of range", e.start, e.end)
		}
		out = slices.Concat(out[:e.start], []byte(e.text), out[e.end:])
	}
	formatted, err := format.Source(out)
	if err != nil {
		slog.Debug("fixed source does not format", "error", err)
		return out, nil
	}
	return formatted, nil
}

func write(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, content) {
		return nil
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
