// Package typewalk walks embedding chains in go/types.
//
// Go has no class inheritance; an option "derives" from enumopt.Base[T] by
// embedding it, directly or through other embedded structs. Interfaces
// derive from the interfaces they embed. Discovery and validation both
// answer their questions through AncestorSatisfies so the chain is walked
// the same way everywhere.
package typewalk

import (
	"go/types"
)

// EnumOptPath is the import path of the runtime package.
const EnumOptPath = "github.com/cmmoran/collectiongen/pkg/enumopt"

// AncestorSatisfies walks t and every type reachable from it through
// embedding, breadth first, and returns the first named type for which pred
// holds. Pointers are dereferenced. Each type is visited once.
func AncestorSatisfies(t types.Type, pred func(*types.Named) bool) (*types.Named, bool) {
	seen := make(map[string]bool)
	queue := []types.Type{t}
	for len(queue) > 0 {
		cur := deref(queue[0])
		queue = queue[1:]
		if cur == nil {
			continue
		}
		key := types.TypeString(cur, nil)
		if seen[key] {
			continue
		}
		seen[key] = true

		if named, ok := cur.(*types.Named); ok && pred(named) {
			return named, true
		}
		queue = append(queue, embedded(cur)...)
	}
	return nil, false
}

// embedded returns the types directly embedded in t.
func embedded(t types.Type) []types.Type {
	var out []types.Type
	switch u := t.Underlying().(type) {
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if f := u.Field(i); f.Embedded() {
				out = append(out, f.Type())
			}
		}
	case *types.Interface:
		for i := 0; i < u.NumEmbeddeds(); i++ {
			out = append(out, u.EmbeddedType(i))
		}
	}
	return out
}

func deref(t types.Type) types.Type {
	if p, ok := t.(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}

// IsEnumOpt reports whether named is an instance of the generic enumopt type
// called name with exactly one type parameter.
func IsEnumOpt(named *types.Named, name string) bool {
	if named == nil {
		return false
	}
	obj := named.Origin().Obj()
	if obj == nil || obj.Pkg() == nil {
		return false
	}
	return obj.Name() == name &&
		obj.Pkg().Path() == EnumOptPath &&
		named.Origin().TypeParams().Len() == 1
}

// IsBase reports whether named is enumopt.Base[T].
func IsBase(named *types.Named) bool {
	return IsEnumOpt(named, "Base")
}

// IsCollectionBase reports whether named is enumopt.CollectionBase[T].
func IsCollectionBase(named *types.Named) bool {
	return IsEnumOpt(named, "CollectionBase")
}

// BaseArg returns T of the enumopt.Base[T] reachable from t.
func BaseArg(t types.Type) (types.Type, bool) {
	return typeArg(t, IsBase)
}

// CollectionArg returns T of the enumopt.CollectionBase[T] reachable from t.
func CollectionArg(t types.Type) (types.Type, bool) {
	return typeArg(t, IsCollectionBase)
}

func typeArg(t types.Type, pred func(*types.Named) bool) (types.Type, bool) {
	named, ok := AncestorSatisfies(t, pred)
	if !ok || named.TypeArgs().Len() != 1 {
		return nil, false
	}
	return named.TypeArgs().At(0), true
}

// EmbedsDirectly reports whether t is a struct with an embedded field
// satisfying pred, without going through intermediate types.
func EmbedsDirectly(t types.Type, pred func(*types.Named) bool) bool {
	for _, e := range embedded(deref(t)) {
		if named, ok := deref(e).(*types.Named); ok && pred(named) {
			return true
		}
	}
	return false
}

// Derives reports whether t embeds base anywhere in its chain or, for
// interface bases, whether t or *t implements it.
func Derives(t, base types.Type) bool {
	if _, ok := AncestorSatisfies(t, func(n *types.Named) bool { return types.Identical(n, base) }); ok {
		return true
	}
	iface, ok := base.Underlying().(*types.Interface)
	if !ok {
		return false
	}
	return Implements(t, iface)
}

// Implements reports whether a value of t or *t implements iface.
func Implements(t types.Type, iface *types.Interface) bool {
	if types.Implements(t, iface) {
		return true
	}
	if _, isPtr := t.(*types.Pointer); isPtr {
		return false
	}
	if _, isIface := t.Underlying().(*types.Interface); isIface {
		return false
	}
	return types.Implements(types.NewPointer(t), iface)
}

// FindPackage returns the package with path reachable from pkg through its
// imports, or nil.
func FindPackage(pkg *types.Package, path string) *types.Package {
	if pkg == nil {
		return nil
	}
	seen := map[*types.Package]bool{}
	queue := []*types.Package{pkg}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		if p.Path() == path {
			return p
		}
		queue = append(queue, p.Imports()...)
	}
	return nil
}

// Imports reports whether pkg imports path, directly or transitively.
func Imports(pkg *types.Package, path string) bool {
	return pkg != nil && pkg.Path() != path && FindPackage(pkg, path) != nil
}

// OptionInterface returns enumopt.Option as seen from pkg, or nil when pkg
// does not reach the runtime package.
func OptionInterface(pkg *types.Package) *types.Interface {
	rt := FindPackage(pkg, EnumOptPath)
	if rt == nil {
		return nil
	}
	obj, ok := rt.Scope().Lookup("Option").(*types.TypeName)
	if !ok {
		return nil
	}
	iface, _ := obj.Type().Underlying().(*types.Interface)
	return iface
}

// IsNonGenericInterface reports whether t is a method-set interface usable
// as a constraint for a generic collection: an interface type that is not
// an instantiated generic, not a type-set union and not empty.
func IsNonGenericInterface(t types.Type) bool {
	if named, ok := t.(*types.Named); ok && named.TypeArgs().Len() > 0 {
		return false
	}
	iface, ok := t.Underlying().(*types.Interface)
	if !ok {
		return false
	}
	return iface.IsMethodSet() && iface.NumMethods() > 0
}
