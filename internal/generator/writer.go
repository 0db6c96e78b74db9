package generator

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/cmmoran/collectiongen/internal/emit"
	"github.com/cmmoran/collectiongen/internal/loader"
	"github.com/cmmoran/collectiongen/pkg/manifest"
)

func outputPath(dir, output string) string {
	return filepath.Join(dir, output)
}

// write settles the status of every package result and, unless this is a
// dry run, applies it to disk and to the manifest.
func (g *Generator) write(ctx context.Context, loaded *loader.Result, result *Result) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)
	for _, pr := range result.Packages {
		if pr.Status == StatusFailed {
			continue
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.settle(pr)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if g.opts.Manifest == "" || g.opts.DryRun {
		return nil
	}
	return g.updateManifest(loaded, result)
}

// settle compares pr with the file on disk and writes or deletes it.
func (g *Generator) settle(pr *PackageResult) error {
	existing, err := os.ReadFile(pr.File)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &GenerationError{Package: pr.Path, File: pr.File, Message: "read existing output", Cause: err}
	}

	switch {
	case pr.Content == nil && !exists:
		pr.Status = StatusNone
	case pr.Content == nil:
		if !IsGenerated(existing) {
			// A hand-written file that happens to use the output name.
			pr.Status = StatusNone
			return nil
		}
		pr.Status = StatusDeleted
		if !g.opts.DryRun {
			if err := os.Remove(pr.File); err != nil {
				return &GenerationError{Package: pr.Path, File: pr.File, Message: "remove stale output", Cause: err}
			}
		}
	case exists && bytes.Equal(existing, pr.Content):
		pr.Status = StatusUnchanged
	default:
		pr.Status = StatusWritten
		if !g.opts.DryRun {
			if err := writeFile(pr.File, pr.Content); err != nil {
				return &GenerationError{Package: pr.Path, File: pr.File, Message: "write output", Cause: err}
			}
		}
	}
	return nil
}

// writeFile replaces path atomically so that an interrupted run never
// leaves half a file behind.
func writeFile(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// IsGenerated reports whether content starts with the collectiongen header.
func IsGenerated(content []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		return line == "// "+emit.Header
	}
	return false
}

func (g *Generator) updateManifest(loaded *loader.Result, result *Result) error {
	path := g.opts.Manifest
	if !filepath.IsAbs(path) {
		path = filepath.Join(loaded.Module.Dir, path)
	}
	m, err := manifest.Load(path)
	if err != nil {
		return errors.WithHint(errors.Wrap(err, "load manifest"), "delete the manifest to rebuild it on the next run")
	}
	before := len(m.Files)
	dirty := false

	claimed := make(map[string]bool, len(result.Packages))
	loadedDirs := make(map[string]bool, len(result.Packages))
	for _, pr := range result.Packages {
		rel := g.relative(loaded.Module, pr.File)
		claimed[rel] = true
		loadedDirs[pr.Dir] = true
		switch pr.Status {
		case StatusWritten, StatusUnchanged:
			e := manifest.Entry{Package: pr.Path, File: rel, SHA256: manifest.Hash(pr.Content)}
			if old, ok := m.Lookup(rel); !ok || old != e {
				m.Record(e)
				dirty = true
			}
		case StatusDeleted, StatusNone:
			if _, ok := m.Lookup(rel); ok {
				m.Remove(rel)
				dirty = true
			}
		}
	}

	for _, e := range append([]manifest.Entry(nil), m.Files...) {
		if claimed[e.File] {
			continue
		}
		removed, keep, err := g.removeOrphan(loaded.Module, m, e, loadedDirs)
		if err != nil {
			return err
		}
		if removed != "" {
			result.Orphans = append(result.Orphans, removed)
		}
		if !keep {
			m.Remove(e.File)
			dirty = true
		}
	}

	if !dirty || (before == 0 && len(m.Files) == 0) {
		return nil
	}
	if err := m.Save(path); err != nil {
		return errors.Wrap(err, "save manifest")
	}
	return nil
}

// removeOrphan deletes the file of e when it is untouched since it was
// generated and its directory either was part of this run or holds no other
// Go source. It reports the removed path and whether the entry stays.
func (g *Generator) removeOrphan(mod loader.Module, m *manifest.Manifest, e manifest.Entry, loadedDirs map[string]bool) (string, bool, error) {
	abs := filepath.Join(mod.Dir, filepath.FromSlash(e.File))
	content, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", true, errors.Wrapf(err, "read %s", abs)
	}
	if !m.Unmodified(e.File, content) {
		return "", false, nil
	}
	dir := filepath.Dir(abs)
	if !loadedDirs[dir] && hasOtherGoFiles(dir, filepath.Base(abs)) {
		return "", true, nil
	}
	if err := os.Remove(abs); err != nil {
		return "", true, &GenerationError{Package: e.Package, File: abs, Message: "remove orphaned output", Cause: err}
	}
	return abs, false, nil
}

func hasOtherGoFiles(dir, except string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || name == except || !strings.HasSuffix(name, ".go") {
			continue
		}
		return true
	}
	return false
}

func (g *Generator) relative(mod loader.Module, file string) string {
	rel, err := filepath.Rel(mod.Dir, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
