package validate

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/pkg/enumopt"
)

// checkLookup applies the rules that depend on the lookup directive alone.
func (c *checker) checkLookup(k *model.LookupKey) bool {
	pos, end := k.Ident.Pos(), k.Ident.End()
	key := k.Key()
	if key == nil || !types.Comparable(key) {
		c.add(diag.New(diag.InvalidLookupMethod, pos, end, k.Accessor, k.Method.Name()))
		return false
	}
	malformed := func(format string, args ...any) bool {
		c.add(diag.New(diag.MalformedDirective, pos, end, fmt.Sprintf(format, args...)))
		return false
	}
	if !token.IsIdentifier(k.Accessor) || !token.IsExported(k.Accessor) {
		return malformed("lookup accessor %q must be an exported identifier", k.Accessor)
	}
	if reservedMethods[k.Accessor] {
		return malformed("lookup accessor %q collides with a generated method", k.Accessor)
	}
	if k.Fold && !isString(key) {
		return malformed("lookup %s: fold requires a string key, %s returns %s", k.Accessor, k.Method.Name(), c.typeString(key))
	}
	if k.ReturnsExpr != "" && k.Returns == nil {
		return malformed("lookup %s: returns type %q not found", k.Accessor, k.ReturnsExpr)
	}
	if k.Returns != nil && !types.IsInterface(k.Returns) {
		c.add(diag.New(diag.NotAssignable, pos, end, c.typeString(k.Returns), "an interface"))
		return false
	}
	return true
}

func isString(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsString != 0
}

// targetLookups returns the lookups of t that can be emitted for opts and,
// per single-valued lookup, the options left out of it because they repeat
// an earlier option's key.
func (c *checker) targetLookups(t *model.CollectionTarget, opts []*model.OptionInfo) ([]*model.LookupKey, map[*model.LookupKey]map[*model.OptionInfo]bool) {
	promoted := promotedMethods(t)
	seen := make(map[string]bool)
	var (
		out       []*model.LookupKey
		unindexed map[*model.LookupKey]map[*model.OptionInfo]bool
	)
	for _, k := range t.Lookups {
		if !c.lookupOK[k] {
			continue
		}
		pos, end := k.Ident.Pos(), k.Ident.End()
		if promoted[k.Accessor] || seen[k.Accessor] {
			c.add(diag.New(diag.MalformedDirective, pos, end,
				fmt.Sprintf("lookup accessor %q is already declared on collection %s", k.Accessor, t.Name)))
			continue
		}
		seen[k.Accessor] = true
		if !k.Multi {
			if dups := c.duplicateValues(k, opts); len(dups) > 0 {
				if unindexed == nil {
					unindexed = make(map[*model.LookupKey]map[*model.OptionInfo]bool)
				}
				unindexed[k] = dups
			}
		}
		out = append(out, k)
	}
	return out, unindexed
}

// duplicateValues is ENH006. It reports and returns every option whose
// statically known lookup value repeats an earlier option's.
func (c *checker) duplicateValues(k *model.LookupKey, opts []*model.OptionInfo) map[*model.OptionInfo]bool {
	first := make(map[string]*model.OptionInfo)
	var dups map[*model.OptionInfo]bool
	for _, o := range opts {
		v, ok := o.LookupValues[k.Method.Name()]
		if !ok {
			continue
		}
		key := v.ExactString()
		if k.Fold && v.Kind() == constant.String {
			key = enumopt.FoldKey(constant.StringVal(v))
		}
		prev, ok := first[key]
		if !ok {
			first[key] = o
			continue
		}
		if dups == nil {
			dups = make(map[*model.OptionInfo]bool)
		}
		dups[o] = true
		d := diag.New(diag.DuplicateLookupValue, o.Ident().Pos(), o.Ident().End(), k.Accessor, v.ExactString(), prev.Obj.Name(), o.Obj.Name())
		c.add(d.WithFix(AddMultiFix(k)))
	}
	return dups
}

func promotedMethods(t *model.CollectionTarget) map[string]bool {
	out := map[string]bool{t.Obj.Name(): true}
	ms := types.NewMethodSet(types.NewPointer(t.Obj.Type()))
	for i := 0; i < ms.Len(); i++ {
		out[ms.At(i).Obj().Name()] = true
	}
	return out
}
