package validate

import (
	"fmt"
	"go/types"
	"strings"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/marker"
	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/internal/typewalk"
)

// TargetRule checks one collection target. It returns false when the target
// must not be emitted.
type TargetRule func(c *checker, t *model.CollectionTarget) bool

// OptionRule checks one option in one target. It returns false when the
// option must be excluded from the target; later rules are then skipped.
type OptionRule func(c *checker, t *model.CollectionTarget, o *model.OptionInfo) bool

var enumTargetRules = []TargetRule{
	collectionName,
	collectionAncestor,
	genericConstraint,
	storageType,
}

var typeTargetRules = []TargetRule{
	typeCollectionBase,
	storageType,
}

var optionRules = []OptionRule{
	derivesFromBase,
	globalReachable,
	assignable,
	constructible,
}

func (c *checker) target(t *model.CollectionTarget) {
	rules := enumTargetRules
	if t.Family == marker.FamilyType {
		rules = typeTargetRules
	}
	ok := true
	for _, rule := range rules {
		if !rule(c, t) {
			ok = false
		}
	}
	if !ok {
		return
	}

	pt := &model.PlannedTarget{Target: t}
	var results []model.Result
	var concrete []*model.OptionInfo
	for _, o := range t.Options {
		kept := false
		c.guard(o.Ident(), o.Obj.Name(), func() {
			kept = true
			for _, rule := range optionRules {
				if !rule(c, t, o) {
					kept = false
					break
				}
			}
		})
		if !kept {
			results = append(results, model.Result{Option: o, Status: model.Excluded})
			continue
		}
		results = append(results, model.Result{Option: o, Status: model.Kept})
		pt.Descriptors = append(pt.Descriptors, o)
		if !o.Abstract {
			concrete = append(concrete, o)
		}
	}
	c.report.Results[t] = results

	c.duplicateOptions(t, concrete)
	pt.Lookups, pt.Unindexed = c.targetLookups(t, concrete)
	pt.Concrete = assignAccessors(t, concrete, pt.Lookups)

	c.report.Plan.Targets = append(c.report.Plan.Targets, pt)
}

// collectionName is ENH008.
func collectionName(c *checker, t *model.CollectionTarget) bool {
	if t.Name != "" {
		return true
	}
	d := diag.New(diag.MissingCollectionName, t.Ident().Pos(), t.Ident().End(), t.Obj.Name())
	c.add(d.WithFix(AddNameFix(t)))
	return false
}

// collectionAncestor is ENH009 for targets.
func collectionAncestor(c *checker, t *model.CollectionTarget) bool {
	if t.HasAncestor {
		return true
	}
	c.add(diag.New(diag.MissingBaseInheritance, t.Ident().Pos(), t.Ident().End(), t.Obj.Name(), "enumopt.CollectionBase[T]"))
	return false
}

// genericConstraint is ENH010.
func genericConstraint(c *checker, t *model.CollectionTarget) bool {
	if !t.Generic {
		return true
	}
	param := "<none>"
	if t.TypeParam != nil {
		param = t.TypeParam.Obj().Name()
	}
	named, _ := t.Obj.Type().(*types.Named)
	ok := named != nil &&
		named.TypeParams().Len() == 1 &&
		t.TypeParam != nil &&
		t.Element == t.TypeParam.Constraint() &&
		typewalk.IsNonGenericInterface(t.TypeParam.Constraint())
	if !ok {
		c.add(diag.New(diag.GenericMissingConstraint, t.Ident().Pos(), t.Ident().End(), t.Obj.Name(), param))
	}
	return ok
}

// typeCollectionBase is TC001.
func typeCollectionBase(c *checker, t *model.CollectionTarget) bool {
	if t.Element != nil {
		return true
	}
	suffix := ""
	if t.ElementExpr != "" {
		suffix = fmt.Sprintf(": %q not found", t.ElementExpr)
	}
	c.add(diag.New(diag.TypeCollectionMissingBase, t.Ident().Pos(), t.Ident().End(), t.Obj.Name(), suffix))
	return false
}

// storageType is ENH004 for targets: the type handed out must be an
// interface implementing enumopt.Option.
func storageType(c *checker, t *model.CollectionTarget) bool {
	if t.Element == nil {
		return false
	}
	if t.Generic && (t.TypeParam == nil || !typewalk.IsNonGenericInterface(t.Element)) {
		return false
	}
	if t.ReturnsExpr != "" && t.Returns == nil {
		c.add(diag.New(diag.MalformedDirective, t.Ident().Pos(), t.Ident().End(),
			fmt.Sprintf("returns type %q of %s not found", t.ReturnsExpr, t.Obj.Name())))
		return false
	}
	ok := true
	for _, s := range []types.Type{t.Element, t.Returns} {
		if s == nil || c.isOptionInterface(s) {
			continue
		}
		c.add(diag.New(diag.NotAssignable, t.Ident().Pos(), t.Ident().End(), c.typeString(s), "enumopt.Option"))
		ok = false
	}
	return ok
}

func (c *checker) isOptionInterface(t types.Type) bool {
	return c.option != nil && types.IsInterface(t) && types.Implements(t, c.option)
}

// derivesFromBase is TC002.
func derivesFromBase(c *checker, t *model.CollectionTarget, o *model.OptionInfo) bool {
	if o.Family != marker.FamilyType || typewalk.Derives(o.Obj.Type(), t.Element) {
		return true
	}
	c.add(diag.New(diag.TypeOptionNotDerived, o.Ident().Pos(), o.Ident().End(), o.Obj.Name(), c.typeString(t.Element)))
	return false
}

// globalReachable is ENH012: generated code in the target's package must be
// able to import and name the option.
func globalReachable(c *checker, t *model.CollectionTarget, o *model.OptionInfo) bool {
	if o.Local {
		return true
	}
	from := t.Obj.Pkg().Path()
	var reason string
	switch {
	case o.Pkg().Name() == "main":
		reason = "package main cannot be imported"
	case !o.Obj.Exported():
		reason = "type is not exported"
	case !internalVisible(o.Pkg().Path(), from):
		reason = "internal package is not visible"
	case typewalk.Imports(o.Pkg(), from):
		reason = "importing it would create an import cycle"
	}
	if reason == "" {
		return true
	}
	c.add(diag.New(diag.UnreachableGlobalOption, o.Ident().Pos(), o.Ident().End(), o.Pkg().Path()+"."+o.Obj.Name(), from, reason))
	return false
}

func internalVisible(path, from string) bool {
	i := strings.LastIndex(path, "/internal/")
	switch {
	case i >= 0:
	case strings.HasSuffix(path, "/internal"):
		i = len(path) - len("/internal")
	case strings.HasPrefix(path, "internal/") || path == "internal":
		return !strings.Contains(from, ".")
	default:
		return true
	}
	parent := path[:i]
	return from == parent || strings.HasPrefix(from, parent+"/")
}

// assignable is ENH004 for options.
func assignable(c *checker, t *model.CollectionTarget, o *model.OptionInfo) bool {
	if o.Abstract {
		return true
	}
	inst := o.Instance()
	if types.AssignableTo(inst, t.Storage()) {
		return true
	}
	c.add(diag.New(diag.NotAssignable, o.Ident().Pos(), o.Ident().End(), c.typeString(inst), c.typeString(t.Storage())))
	return false
}

// constructible is ENH013. It never excludes the option.
func constructible(c *checker, _ *model.CollectionTarget, o *model.OptionInfo) bool {
	if o.Abstract || o.Constructor != nil || (o.Explicit && o.DirectBase) {
		return true
	}
	c.add(diag.New(diag.MissingConstructor, o.Ident().Pos(), o.Ident().End(), o.Obj.Name()))
	return true
}

// duplicateOptions is ENH002/TC003 and ENH003.
func (c *checker) duplicateOptions(t *model.CollectionTarget, opts []*model.OptionInfo) {
	names := make(map[string]*model.OptionInfo)
	ids := make(map[int]*model.OptionInfo)
	for _, o := range opts {
		if prev, ok := names[o.Name]; ok && !o.RuntimeName && !prev.RuntimeName {
			id := diag.DuplicateOptionName
			if t.Family == marker.FamilyType {
				id = diag.DuplicateTypeOptionName
			}
			c.add(diag.New(id, o.Ident().Pos(), o.Ident().End(), o.Name, t.Name, prev.Obj.Name()))
		}
		names[o.Name] = o
		if !o.HasID {
			continue
		}
		if prev, ok := ids[o.ID]; ok {
			c.add(diag.New(diag.DuplicateOptionID, o.Ident().Pos(), o.Ident().End(), o.ID, t.Name, prev.Obj.Name()))
		}
		ids[o.ID] = o
	}
}

func (c *checker) extend(e *model.ExtendTarget) {
	if _, ok := e.Obj.Type().Underlying().(*types.Basic); !ok {
		c.add(diag.New(diag.MalformedDirective, e.Ident().Pos(), e.Ident().End(),
			fmt.Sprintf("%s requires a type with a basic underlying type, %s is %s",
				marker.KindExtendEnum, e.Obj.Name(), c.typeString(e.Obj.Type().Underlying()))))
		return
	}
	c.report.Plan.Extends = append(c.report.Plan.Extends, e)
}
