package discovery

import (
	"context"
	"go/constant"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/internal/testutil"
)

func unit(c *testutil.Checked) Unit {
	return Unit{Fset: c.Fset, Files: c.Files, Pkg: c.Pkg, Info: c.Info}
}

func discover(t *testing.T, pkgs ...testutil.Package) *model.Registry {
	t.Helper()
	checked := testutil.Check(t, pkgs...)
	in := Input{Unit: unit(checked[len(checked)-1])}
	for _, c := range checked[:len(checked)-1] {
		in.Siblings = append(in.Siblings, unit(c))
	}
	reg, err := Discover(context.Background(), in)
	require.NoError(t, err)
	return reg
}

func names(opts []*model.OptionInfo) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Obj.Name()
	}
	return out
}

func TestDiscoverPriority(t *testing.T) {
	reg := discover(t, testutil.Package{Path: testutil.PriorityPath, Files: map[string]string{"priority.go": testutil.Priority}})

	require.Len(t, reg.Targets, 1)
	target := reg.Targets[0]
	assert.Equal(t, "Priorities", target.Name)
	assert.True(t, target.HasAncestor)
	assert.True(t, target.Singleton)
	element, ok := target.Element.(*types.Named)
	require.True(t, ok)
	assert.Equal(t, "Priority", element.Obj().Name())
	assert.Equal(t, []string{"High", "Low", "VeryLow", "Pending"}, names(target.Options))

	high, low, veryLow, pending := target.Options[0], target.Options[1], target.Options[2], target.Options[3]

	assert.Equal(t, "High", high.Name)
	assert.Equal(t, 1, high.ID)
	assert.True(t, high.HasID, "id read from the constructor literal")
	require.NotNil(t, high.Constructor)
	assert.Equal(t, "NewHigh", high.Constructor.Name())
	assert.False(t, high.Explicit)

	assert.Equal(t, "Low", low.Name)
	assert.Equal(t, 2, low.ID)
	assert.Equal(t, "calm", low.Category)
	assert.True(t, low.Explicit)
	assert.True(t, low.DirectBase)
	assert.Nil(t, low.Constructor)

	assert.Equal(t, "Very Low", veryLow.Name)
	assert.True(t, pending.Abstract)

	require.Len(t, target.Lookups, 2)
	assert.Equal(t, "ByTag", target.Lookups[0].Accessor)
	assert.True(t, target.Lookups[0].Multi)
	assert.Equal(t, "ByCode", target.Lookups[1].Accessor)
	assert.True(t, target.Lookups[1].Fold)

	assert.Equal(t, "urgent", constant.StringVal(high.LookupValues["Tag"]))
	assert.Equal(t, "VL", constant.StringVal(veryLow.LookupValues["Code"]))
	assert.Empty(t, pending.LookupValues, "abstract options are not evaluated")
}

func TestDiscoverComputedName(t *testing.T) {
	reg := discover(t, testutil.Package{Path: "example.com/shapes", Files: map[string]string{"src.go": `package shapes

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
}

func label() string { return "dyn" }

//enum:option
type Dynamic struct {
	enumopt.Base[Shape]
}

func NewDynamic() *Dynamic {
	return &Dynamic{Base: enumopt.NewBase[Shape](7, label())}
}

//enum:option name=Fixed
type Fixed struct {
	enumopt.Base[Shape]
}

func NewFixed() *Fixed {
	return &Fixed{Base: enumopt.NewBase[Shape](8, label())}
}

//enum:collection name=Shapes
type ShapeCollection struct {
	enumopt.CollectionBase[Shape]
}
`}})

	require.Len(t, reg.Targets, 1)
	require.Len(t, reg.Targets[0].Options, 2)
	dynamic, fixed := reg.Targets[0].Options[0], reg.Targets[0].Options[1]

	assert.Equal(t, "Dynamic", dynamic.Name)
	assert.True(t, dynamic.RuntimeName)
	assert.Equal(t, 7, dynamic.ID)
	assert.True(t, dynamic.HasID)

	assert.Equal(t, "Fixed", fixed.Name)
	assert.False(t, fixed.RuntimeName, "the directive name wins")
}

func TestDiscoverExtend(t *testing.T) {
	reg := discover(t, testutil.Package{Path: "example.com/colors", Files: map[string]string{"colors.go": testutil.Colors}})

	require.Len(t, reg.Extends, 1)
	e := reg.Extends[0]
	assert.Equal(t, "Colors", e.Name)
	assert.True(t, e.Integer)
	var consts []string
	for _, k := range e.Constants {
		consts = append(consts, k.Name())
	}
	assert.Equal(t, []string{"Red", "Green", "Blue"}, consts)
}

func TestDiscoverTypeCollection(t *testing.T) {
	reg := discover(t, testutil.Package{Path: "example.com/handlers", Files: map[string]string{"handlers.go": `package handlers

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Handler interface {
	enumopt.Option
	//type:lookup ByKind
	Kind() string
}

//type:collection base=Handler
type HandlerSet struct{}

//type:option Handlers name=json
type JSON struct {
	enumopt.Base[Handler]
}

func (*JSON) Kind() string { return "json" }

//type:option HandlerSet
type XML struct {
	enumopt.Base[Handler]
}

func (*XML) Kind() string { return "xml" }

//type:option Missing
type YAML struct {
	enumopt.Base[Handler]
}
`}})

	require.Len(t, reg.Targets, 1)
	target := reg.Targets[0]
	assert.Equal(t, "Handlers", target.Name, "default name is the plural of the base type")
	assert.Equal(t, []string{"JSON", "XML"}, names(target.Options), "referenced by collection name or type name")
	require.Len(t, target.Lookups, 1)
	assert.Equal(t, "ByKind", target.Lookups[0].Accessor)

	assert.Nil(t, ResolveTypeCollection(reg, "Missing"))
	assert.Same(t, target, ResolveTypeCollection(reg, "HandlerSet"))
}

func TestDiscoverGlobalSpansSiblings(t *testing.T) {
	checked := testutil.Check(t,
		testutil.Package{Path: "example.com/app/core", Files: map[string]string{"core.go": `package core

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Feature interface {
	enumopt.Option
}

//enum:global name=Features
type FeatureCollection struct {
	enumopt.CollectionBase[Feature]
}

//enum:option
type Local struct {
	enumopt.Base[Feature]
}
`}},
		testutil.Package{Path: "example.com/app/billing", Files: map[string]string{"billing.go": `package billing

import (
	"example.com/app/core"
	"github.com/cmmoran/collectiongen/pkg/enumopt"
)

//enum:option
type Invoices struct {
	enumopt.Base[core.Feature]
}
`}},
	)
	reg, err := Discover(context.Background(), Input{Unit: unit(checked[0]), Siblings: []Unit{unit(checked[1])}})
	require.NoError(t, err)

	require.Len(t, reg.Targets, 1)
	assert.True(t, reg.Targets[0].Global)
	assert.Equal(t, []string{"Invoices", "Local"}, names(reg.Targets[0].Options), "ordered by package path")
	assert.False(t, reg.Targets[0].Options[0].Local)
	assert.Empty(t, reg.Invalid, "foreign packages never report")
}

func TestDiscoverRecordsMalformedDirectives(t *testing.T) {
	reg := discover(t, testutil.Package{Path: "example.com/bad", Files: map[string]string{"bad.go": `package bad

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Thing interface {
	enumopt.Option
}

//enum:option id=abc
type A struct {
	enumopt.Base[Thing]
}

//enum:lookup ByA
type B struct{}
`}})

	require.Len(t, reg.Invalid, 2)
	assert.Equal(t, "A", reg.Invalid[0].Anchor.Name)
	assert.Contains(t, reg.Invalid[0].Err.Error(), "invalid id")
	assert.Equal(t, "B", reg.Invalid[1].Anchor.Name)
}

func TestDiscoverCancelled(t *testing.T) {
	checked := testutil.Check(t, testutil.Package{Path: testutil.PriorityPath, Files: map[string]string{"priority.go": testutil.Priority}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discover(ctx, Input{Unit: unit(checked[0])})
	assert.ErrorIs(t, err, context.Canceled)
}
