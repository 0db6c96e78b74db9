package typewalk

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runtimeSrc = `package enumopt

type Option interface {
	ID() int
	Name() string
}

type Base[T any] struct{ id int; name string }

func (b Base[T]) ID() int      { return b.id }
func (b Base[T]) Name() string { return b.name }

type CollectionBase[T any] struct{}
`

const userSrc = `package user

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Priority interface {
	enumopt.Option
	Level() int
}

type Ranked interface {
	Priority
}

type High struct {
	enumopt.Base[Priority]
}

func (*High) Level() int { return 1 }

type shared struct {
	enumopt.Base[Priority]
}

type Low struct {
	*shared
}

type Loose struct{}

type Priorities struct {
	enumopt.CollectionBase[Priority]
}

type Shapes[T Priority] struct {
	enumopt.CollectionBase[T]
}

type Cyclic struct {
	*Cyclic
}

type Anything interface{}

type Generic[T any] interface{ Get() T }
`

type mapImporter map[string]*types.Package

func (m mapImporter) Import(path string) (*types.Package, error) {
	if p, ok := m[path]; ok {
		return p, nil
	}
	return importer.Default().Import(path)
}

func check(t *testing.T) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	parse := func(name, src string) *ast.File {
		f, err := parser.ParseFile(fset, name, src, 0)
		require.NoError(t, err)
		return f
	}
	rt, err := (&types.Config{}).Check(EnumOptPath, fset, []*ast.File{parse("enumopt.go", runtimeSrc)}, nil)
	require.NoError(t, err)

	conf := &types.Config{Importer: mapImporter{EnumOptPath: rt}}
	pkg, err := conf.Check("example.com/user", fset, []*ast.File{parse("user.go", userSrc)}, nil)
	require.NoError(t, err)
	return pkg
}

func lookup(t *testing.T, pkg *types.Package, name string) types.Type {
	t.Helper()
	obj := pkg.Scope().Lookup(name)
	require.NotNil(t, obj, name)
	return obj.Type()
}

func TestBaseArg(t *testing.T) {
	pkg := check(t)
	priority := lookup(t, pkg, "Priority")

	for _, name := range []string{"High", "Low"} {
		arg, ok := BaseArg(lookup(t, pkg, name))
		require.True(t, ok, name)
		assert.True(t, types.Identical(priority, arg), name)
	}

	_, ok := BaseArg(lookup(t, pkg, "Loose"))
	assert.False(t, ok)

	_, ok = BaseArg(types.NewPointer(lookup(t, pkg, "High")))
	assert.True(t, ok, "pointers are dereferenced")
}

func TestCollectionArg(t *testing.T) {
	pkg := check(t)

	arg, ok := CollectionArg(lookup(t, pkg, "Priorities"))
	require.True(t, ok)
	assert.True(t, types.Identical(lookup(t, pkg, "Priority"), arg))

	arg, ok = CollectionArg(lookup(t, pkg, "Shapes"))
	require.True(t, ok)
	_, isParam := arg.(*types.TypeParam)
	assert.True(t, isParam)
}

func TestAncestorSatisfiesTerminatesOnCycles(t *testing.T) {
	pkg := check(t)
	_, ok := AncestorSatisfies(lookup(t, pkg, "Cyclic"), IsBase)
	assert.False(t, ok)
}

func TestEmbedsDirectly(t *testing.T) {
	pkg := check(t)
	assert.True(t, EmbedsDirectly(lookup(t, pkg, "High"), IsBase))
	assert.False(t, EmbedsDirectly(lookup(t, pkg, "Low"), IsBase))
}

func TestDerives(t *testing.T) {
	pkg := check(t)
	priority := lookup(t, pkg, "Priority")

	assert.True(t, Derives(lookup(t, pkg, "High"), priority), "*High implements Priority")
	assert.False(t, Derives(lookup(t, pkg, "Low"), priority), "Low lacks Level")
	assert.True(t, Derives(lookup(t, pkg, "Ranked"), priority), "Ranked embeds Priority")
	assert.False(t, Derives(lookup(t, pkg, "Loose"), priority))
}

func TestOptionInterface(t *testing.T) {
	pkg := check(t)
	iface := OptionInterface(pkg)
	require.NotNil(t, iface)
	assert.Equal(t, 2, iface.NumMethods())
	assert.True(t, Implements(lookup(t, pkg, "High"), iface))

	assert.True(t, Imports(pkg, EnumOptPath))
	assert.False(t, Imports(pkg, "example.com/other"))
}

func TestIsNonGenericInterface(t *testing.T) {
	pkg := check(t)
	assert.True(t, IsNonGenericInterface(lookup(t, pkg, "Priority")))
	assert.False(t, IsNonGenericInterface(lookup(t, pkg, "Anything")))
	assert.False(t, IsNonGenericInterface(lookup(t, pkg, "High")))

	generic := lookup(t, pkg, "Generic").(*types.Named)
	inst, err := types.Instantiate(nil, generic, []types.Type{types.Typ[types.Int]}, true)
	require.NoError(t, err)
	assert.False(t, IsNonGenericInterface(inst))
}
