// Package loader loads the packages collectiongen works on.
package loader

import (
	"context"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// Config controls a load.
type Config struct {
	Dir      string   // working directory of the load
	Patterns []string // package patterns, "./..." when empty
	Tags     []string // build tags
	Output   string   // name of the generated file, neutralised before type-checking
}

// Module is the main module enclosing Config.Dir.
type Module struct {
	Path string
	Dir  string
}

// Result is one consistent snapshot of the loaded packages.
type Result struct {
	Module   Module
	Fset     *token.FileSet
	Packages []*packages.Package // sorted by PkgPath
}

// Load loads the packages matched by cfg in two phases. The first phase only
// lists files so that previously generated output can be replaced by a bare
// package clause; the second phase type-checks with that overlay in place.
// Stale output therefore never hides the declarations it was generated from.
func Load(ctx context.Context, cfg Config) (*Result, error) {
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s", cfg.Dir)
	}
	mod, err := FindModule(dir)
	if err != nil {
		return nil, err
	}
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	var flags []string
	if len(cfg.Tags) > 0 {
		flags = append(flags, "-tags="+strings.Join(cfg.Tags, ","))
	}

	listed, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        dir,
		BuildFlags: flags,
	}, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "list packages")
	}
	overlay := Overlay(listed, cfg.Output)
	slog.Debug("listed packages", "count", len(listed), "overlaid", len(overlay))

	fset := token.NewFileSet()
	pkgs, err := packages.Load(&packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        dir,
		BuildFlags: flags,
		Fset:       fset,
		Overlay:    overlay,
	}, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "load packages")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var listErrs []error
	for _, p := range pkgs {
		for _, e := range p.Errors {
			if e.Kind == packages.ListError {
				listErrs = append(listErrs, errors.Newf("%s: %s", p.PkgPath, e.Msg))
				continue
			}
			slog.Debug("package error", "package", p.PkgPath, "error", e.Msg)
		}
	}
	if len(listErrs) > 0 {
		return nil, errors.WithHint(errors.Join(listErrs...), "check the package patterns and the go.mod of the target module")
	}

	slices.SortFunc(pkgs, func(a, b *packages.Package) int { return strings.Compare(a.PkgPath, b.PkgPath) })
	return &Result{Module: mod, Fset: fset, Packages: pkgs}, nil
}

// Overlay maps every existing output file of pkgs to a bare package clause.
func Overlay(pkgs []*packages.Package, output string) map[string][]byte {
	overlay := make(map[string][]byte)
	if output == "" {
		return overlay
	}
	for _, p := range pkgs {
		if p.Name == "" {
			continue
		}
		for _, f := range p.GoFiles {
			if filepath.Base(f) == output {
				overlay[f] = []byte("package " + p.Name + "\n")
			}
		}
	}
	return overlay
}

// FindModule walks up from dir until it finds go.mod and returns the module
// it declares.
func FindModule(dir string) (Module, error) {
	from := dir
	for {
		gomod := filepath.Join(from, "go.mod")
		data, err := os.ReadFile(gomod)
		if err == nil {
			path := modfile.ModulePath(data)
			if path == "" {
				return Module{}, errors.Newf("%s declares no module path", gomod)
			}
			return Module{Path: path, Dir: from}, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return Module{}, errors.Wrapf(err, "read %s", gomod)
		}
		parent := filepath.Dir(from)
		if parent == from {
			return Module{}, errors.WithHint(errors.Newf("no go.mod found above %s", dir), "collectiongen runs inside a Go module")
		}
		from = parent
	}
}

// InModule reports whether p belongs to the main module m.
func (m Module) InModule(p *packages.Package) bool {
	if p.Module != nil {
		return p.Module.Path == m.Path
	}
	return p.PkgPath == m.Path || strings.HasPrefix(p.PkgPath, m.Path+"/")
}

// Dir returns the directory of p, derived from its files.
func Dir(p *packages.Package) string {
	for _, files := range [][]string{p.GoFiles, p.CompiledGoFiles, p.OtherFiles} {
		if len(files) > 0 {
			return filepath.Dir(files[0])
		}
	}
	return ""
}
