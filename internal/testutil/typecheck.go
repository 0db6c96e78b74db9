// Package testutil type-checks small in-memory packages for tests that need
// go/types objects without a module on disk.
package testutil

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/collectiongen/internal/typewalk"
)

// Runtime is a minimal copy of the enumopt API surface discovery looks at.
const Runtime = `package enumopt

type Option interface {
	ID() int
	Name() string
}

type Base[T any] struct {
	id   int
	name string
}

func NewBase[T any](id int, name string) Base[T] { return Base[T]{id: id, name: name} }

func (b Base[T]) ID() int      { return b.id }
func (b Base[T]) Name() string { return b.name }

type CollectionBase[T any] struct{}
`

// Package is the source of one package: its import path and files by name.
type Package struct {
	Path  string
	Files map[string]string
}

// Checked is one type-checked package.
type Checked struct {
	Fset  *token.FileSet
	Files []*ast.File
	Pkg   *types.Package
	Info  *types.Info
}

// Check type-checks pkgs in order against the enumopt runtime. Later
// packages may import earlier ones. All packages share one file set.
func Check(t testing.TB, pkgs ...Package) []*Checked {
	t.Helper()
	fset := token.NewFileSet()
	imp := mapImporter{}

	rt := parseFiles(t, fset, map[string]string{"enumopt.go": Runtime})
	runtime, err := (&types.Config{}).Check(typewalk.EnumOptPath, fset, rt, nil)
	require.NoError(t, err)
	imp[typewalk.EnumOptPath] = runtime

	out := make([]*Checked, 0, len(pkgs))
	for _, p := range pkgs {
		files := parseFiles(t, fset, p.Files)
		info := &types.Info{
			Types:      make(map[ast.Expr]types.TypeAndValue),
			Defs:       make(map[*ast.Ident]types.Object),
			Uses:       make(map[*ast.Ident]types.Object),
			Implicits:  make(map[ast.Node]types.Object),
			Selections: make(map[*ast.SelectorExpr]*types.Selection),
			Instances:  make(map[*ast.Ident]types.Instance),
		}
		pkg, err := (&types.Config{Importer: imp}).Check(p.Path, fset, files, info)
		require.NoError(t, err, p.Path)
		imp[p.Path] = pkg
		out = append(out, &Checked{Fset: fset, Files: files, Pkg: pkg, Info: info})
	}
	return out
}

func parseFiles(t testing.TB, fset *token.FileSet, srcs map[string]string) []*ast.File {
	t.Helper()
	names := make([]string, 0, len(srcs))
	for name := range srcs {
		names = append(names, name)
	}
	sort.Strings(names)
	files := make([]*ast.File, 0, len(names))
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, srcs[name], parser.ParseComments)
		require.NoError(t, err, name)
		files = append(files, f)
	}
	return files
}

type mapImporter map[string]*types.Package

func (m mapImporter) Import(path string) (*types.Package, error) {
	if p, ok := m[path]; ok {
		return p, nil
	}
	return importer.Default().Import(path)
}
