// Package discovery finds the declarations carrying collectiongen
// directives and turns them into a model.Registry.
//
// Only type declarations whose doc comment contains a directive, and
// interface methods whose doc comment contains one, are inspected. Imported
// packages are never walked. Discovery records facts; deciding what is wrong
// with them is left to package validate.
package discovery

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"slices"
	"strings"

	"github.com/cmmoran/collectiongen/internal/marker"
	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/internal/typewalk"
)

// Unit is one type-checked package.
type Unit struct {
	Fset  *token.FileSet
	Files []*ast.File
	Pkg   *types.Package
	Info  *types.Info
}

// Input is the read-only view discovery works on.
type Input struct {
	Unit
	// Siblings are the other packages of the main module. Only global
	// collections look at them.
	Siblings []Unit
}

// Discover scans in and returns its registry. The only error it returns is
// the context's.
func Discover(ctx context.Context, in Input) (*model.Registry, error) {
	c := NewCollector(in.Unit)
	if err := c.scan(ctx); err != nil {
		return nil, err
	}

	var foreign []*Collector
	if c.hasGlobal() {
		for _, s := range in.Siblings {
			if s.Pkg == nil || s.Pkg == in.Pkg || s.Pkg.Path() == in.Pkg.Path() {
				continue
			}
			sc := newForeignCollector(s)
			if err := sc.scan(ctx); err != nil {
				return nil, err
			}
			foreign = append(foreign, sc)
		}
	}
	return c.finish(ctx, foreign)
}

// Finish completes a registry built through Add, without siblings.
func (c *Collector) Finish(ctx context.Context) (*model.Registry, error) {
	return c.finish(ctx, nil)
}

func (c *Collector) scan(ctx context.Context) error {
	for _, f := range c.unit.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ast.IsGenerated(f) {
			continue
		}
		for _, d := range f.Decls {
			if gd, ok := d.(*ast.GenDecl); ok {
				c.Add(f, gd)
			}
		}
	}
	return nil
}

func (c *Collector) hasGlobal() bool {
	for _, t := range c.reg.Targets {
		if t.Global {
			return true
		}
	}
	return false
}

func (c *Collector) finish(ctx context.Context, foreign []*Collector) (*model.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reg := c.reg
	for _, fc := range foreign {
		reg.Options = append(reg.Options, fc.reg.Options...)
		reg.Lookups = append(reg.Lookups, fc.reg.Lookups...)
	}
	sortByPosition(reg.Fset, reg.Targets, func(t *model.CollectionTarget) (string, token.Pos) {
		return t.Obj.Pkg().Path(), t.Obj.Pos()
	})
	sortByPosition(reg.Fset, reg.Options, func(o *model.OptionInfo) (string, token.Pos) {
		return o.Pkg().Path(), o.Obj.Pos()
	})
	sortByPosition(reg.Fset, reg.Lookups, func(k *model.LookupKey) (string, token.Pos) {
		return k.Owner.Pkg().Path(), k.Ident.Pos()
	})
	sortByPosition(reg.Fset, reg.Extends, func(e *model.ExtendTarget) (string, token.Pos) {
		return e.Obj.Pkg().Path(), e.Obj.Pos()
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.lookupValues(reg.Lookups)
	for _, fc := range foreign {
		fc.lookupValues(reg.Lookups)
	}
	c.extendConstants()
	group(reg)
	return reg, nil
}

// group assigns options and lookup keys to their targets.
func group(reg *model.Registry) {
	for _, t := range reg.Targets {
		t.Options = nil
		t.Lookups = nil
		if t.Element == nil {
			continue
		}
		for _, o := range reg.Options {
			if t.Family != o.Family {
				continue
			}
			if !o.Local && !t.Global {
				continue
			}
			if belongs(reg, t, o) {
				t.Options = append(t.Options, o)
			}
		}
		t.Lookups = lookupsOf(reg, t)
	}
}

func belongs(reg *model.Registry, t *model.CollectionTarget, o *model.OptionInfo) bool {
	switch o.Family {
	case marker.FamilyEnum:
		if !t.HasAncestor {
			return false
		}
		if o.Base != nil {
			return types.Identical(o.Base, t.Element)
		}
		if types.IsInterface(o.Obj.Type()) {
			return typewalk.Derives(o.Obj.Type(), t.Element)
		}
		return false
	case marker.FamilyType:
		return ResolveTypeCollection(reg, o.Collection) == t
	}
	return false
}

// ResolveTypeCollection finds the type-collection target referenced by ref,
// either by collection name or by the target's type name. The last matching
// declaration wins.
func ResolveTypeCollection(reg *model.Registry, ref string) *model.CollectionTarget {
	if ref == "" {
		return nil
	}
	var found *model.CollectionTarget
	for _, t := range reg.Targets {
		if t.Family != marker.FamilyType {
			continue
		}
		if t.Name == ref || t.Obj.Name() == ref {
			found = t
		}
	}
	return found
}

func lookupsOf(reg *model.Registry, t *model.CollectionTarget) []*model.LookupKey {
	iface, ok := types.Unalias(t.Element).Underlying().(*types.Interface)
	if !ok {
		return nil
	}
	var out []*model.LookupKey
	for _, k := range reg.Lookups {
		if k.Family != t.Family || k.Method == nil {
			continue
		}
		for i := 0; i < iface.NumMethods(); i++ {
			m := iface.Method(i)
			if m == k.Method || m.Origin() == k.Method {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// sortByPosition orders items by package path, file name and offset.
func sortByPosition[T any](fset *token.FileSet, items []T, at func(T) (string, token.Pos)) {
	slices.SortStableFunc(items, func(a, b T) int {
		pa, posA := at(a)
		pb, posB := at(b)
		if c := strings.Compare(pa, pb); c != 0 {
			return c
		}
		if fset == nil {
			return int(posA) - int(posB)
		}
		ka, kb := fset.Position(posA), fset.Position(posB)
		if c := strings.Compare(ka.Filename, kb.Filename); c != 0 {
			return c
		}
		return ka.Offset - kb.Offset
	})
}
