// Package validate turns a discovery registry into diagnostics and an
// emit-ready plan.
//
// Rules are independent functions over one target, one option or one lookup.
// A rule that fails fatally excludes its subject; everything else in the
// package still renders.
package validate

import (
	"go/ast"
	"go/types"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/discovery"
	"github.com/cmmoran/collectiongen/internal/marker"
	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/internal/typewalk"
)

// Report is the outcome of one validation pass.
type Report struct {
	Diagnostics diag.Bag
	Plan        *model.Plan
	Results     map[*model.CollectionTarget][]model.Result
}

// HasErrors reports whether any error diagnostic was produced.
func (r *Report) HasErrors() bool {
	return r.Diagnostics.HasErrors()
}

type checker struct {
	reg    *model.Registry
	report *Report
	option *types.Interface // enumopt.Option, nil when unreachable

	lookupOK map[*model.LookupKey]bool
}

// Validate evaluates every rule against reg.
func Validate(reg *model.Registry) *Report {
	c := &checker{
		reg: reg,
		report: &Report{
			Plan:    &model.Plan{Pkg: reg.Pkg},
			Results: make(map[*model.CollectionTarget][]model.Result),
		},
		option:   typewalk.OptionInterface(reg.Pkg),
		lookupOK: make(map[*model.LookupKey]bool),
	}
	c.run()
	c.report.Diagnostics.Dedup()
	c.report.Diagnostics.Sort(reg.Fset)
	return c.report
}

func (c *checker) add(ds ...diag.Diagnostic) {
	c.report.Diagnostics.Add(ds...)
}

// guard runs fn and converts a panic into ENH000 at anchor.
func (c *checker) guard(anchor *ast.Ident, subject string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.add(diag.New(diag.InternalError, anchor.Pos(), anchor.End(), subject, r))
		}
	}()
	fn()
}

func (c *checker) run() {
	for _, f := range c.reg.Faults {
		c.add(diag.New(diag.InternalError, f.Anchor.Pos(), f.Anchor.End(), f.Subject, f.Value))
	}
	for _, m := range c.reg.Invalid {
		c.add(diag.New(diag.MalformedDirective, m.Anchor.Pos(), m.Anchor.End(), m.Err.Error()))
	}

	for _, k := range c.reg.Lookups {
		c.guard(k.Ident, k.Accessor, func() { c.lookupOK[k] = c.checkLookup(k) })
	}

	dup := c.duplicateNames()
	for _, t := range c.reg.Targets {
		if dup[t] {
			continue
		}
		c.guard(t.Ident(), t.Obj.Name(), func() { c.target(t) })
	}
	for _, o := range c.reg.Options {
		if !o.Local {
			continue
		}
		c.guard(o.Ident(), o.Obj.Name(), func() { c.orphan(o) })
	}
	for _, e := range c.reg.Extends {
		if dup[e] {
			continue
		}
		c.guard(e.Ident(), e.Obj.Name(), func() { c.extend(e) })
	}
}

// duplicateNames reports ENH001/TC004 for every collection whose generated
// name is already taken and returns the losers. Generated names share one
// package namespace regardless of family.
func (c *checker) duplicateNames() map[any]bool {
	type owner struct {
		name string
		obj  types.Object
	}
	seen := make(map[string]owner)
	losers := make(map[any]bool)
	for _, t := range c.reg.Targets {
		if t.Name == "" {
			continue
		}
		if prev, ok := seen[t.Name]; ok {
			id := diag.DuplicateCollectionName
			if t.Family == marker.FamilyType {
				id = diag.DuplicateTypeCollection
			}
			c.add(diag.New(id, t.Ident().Pos(), t.Ident().End(), t.Name, prev.obj.Name()))
			losers[t] = true
			continue
		}
		seen[t.Name] = owner{t.Name, t.Obj}
	}
	for _, e := range c.reg.Extends {
		if prev, ok := seen[e.Name]; ok {
			c.add(diag.New(diag.DuplicateCollectionName, e.Ident().Pos(), e.Ident().End(), e.Name, prev.obj.Name()))
			losers[e] = true
			continue
		}
		seen[e.Name] = owner{e.Name, e.Obj}
	}
	return losers
}

// orphan reports options that no target accepted.
func (c *checker) orphan(o *model.OptionInfo) {
	for _, t := range c.reg.Targets {
		for _, x := range t.Options {
			if x == o {
				return
			}
		}
	}
	switch o.Family {
	case marker.FamilyEnum:
		if o.Base == nil && !types.IsInterface(o.Obj.Type()) {
			c.add(diag.New(diag.MissingBaseInheritance, o.Ident().Pos(), o.Ident().End(), o.Obj.Name(), "enumopt.Base[T]"))
			return
		}
		base := "<none>"
		if o.Base != nil {
			base = types.TypeString(o.Base, types.RelativeTo(c.reg.Pkg))
		}
		c.add(diag.New(diag.NoMatchingCollection, o.Ident().Pos(), o.Ident().End(), o.Obj.Name(), base))
	case marker.FamilyType:
		if discovery.ResolveTypeCollection(c.reg, o.Collection) == nil {
			c.add(diag.New(diag.UnresolvedTypeCollection, o.Ident().Pos(), o.Ident().End(), o.Obj.Name(), o.Collection))
		}
	}
}

func (c *checker) typeString(t types.Type) string {
	if t == nil {
		return "<nil>"
	}
	return types.TypeString(t, types.RelativeTo(c.reg.Pkg))
}

