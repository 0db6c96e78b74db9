package model

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"

	"github.com/cmmoran/collectiongen/internal/marker"
)

// Registry is everything discovery learned about one package. It is built
// once per pass and handed explicitly to validation and emission.
type Registry struct {
	Fset    *token.FileSet
	Pkg     *types.Package
	Targets []*CollectionTarget // source order
	Options []*OptionInfo       // every option directive, source order
	Lookups []*LookupKey        // lookup directives on interface methods
	Extends []*ExtendTarget
	Invalid []*Malformed
	Faults  []*Fault
}

// Malformed is a directive that did not parse, anchored at the declaration
// it is attached to.
type Malformed struct {
	Err    *marker.Error
	Anchor *ast.Ident
}

// Fault is an internal error recovered while analysing a declaration.
type Fault struct {
	Anchor  *ast.Ident
	Subject string
	Value   any
}

// CollectionTarget is a declaration marked //enum:collection, //enum:global
// or //type:collection.
type CollectionTarget struct {
	Family    marker.Family
	Directive marker.Marker
	Obj       *types.TypeName
	Spec      *ast.TypeSpec
	File      *ast.File

	Name        string     // declared collection name, "" when missing
	Element     types.Type // T of CollectionBase[T], or the type:collection base
	ElementExpr string     // base= as written, type family only
	Returns     types.Type // optional return interface
	ReturnsExpr string
	Singleton   bool
	Generic     bool
	Global      bool

	// TypeParam is the single type parameter of a generic target.
	TypeParam *types.TypeParam
	// HasAncestor is false when an enum target does not embed CollectionBase.
	HasAncestor bool

	Options []*OptionInfo
	Lookups []*LookupKey
}

// Storage is the type the collection hands out: Returns when set, else
// Element.
func (t *CollectionTarget) Storage() types.Type {
	if t.Returns != nil {
		return t.Returns
	}
	return t.Element
}

// Ident returns the name of the target's declaration.
func (t *CollectionTarget) Ident() *ast.Ident {
	return t.Spec.Name
}

// OptionInfo is a declaration marked //enum:option or //type:option.
type OptionInfo struct {
	Family    marker.Family
	Directive marker.Marker
	Obj       *types.TypeName
	Spec      *ast.TypeSpec

	Name     string // display name
	ID       int
	HasID    bool
	Category string
	Abstract bool

	// Explicit is true when the directive itself named the option or gave
	// it an id.
	Explicit bool

	// Base is T of the embedded enumopt.Base[T], nil when absent.
	Base types.Type
	// DirectBase is true when Base[T] is a direct field of the option.
	DirectBase bool
	// Collection is the collection reference of a type option.
	Collection string

	// Constructor is the zero-argument New<Type> function, if any.
	Constructor *types.Func
	// RuntimeName is true when the constructor computes the display name.
	// Name then holds the type name.
	RuntimeName bool

	// LookupValues holds the statically known result of each lookup method
	// implemented by the option, keyed by interface method name.
	LookupValues map[string]constant.Value

	// Local is false for options found in sibling packages of a global
	// collection.
	Local bool
}

// Instance is the type of the value the generated code creates for the
// option: the constructor's result, else a pointer to the option type.
func (o *OptionInfo) Instance() types.Type {
	if o.Constructor != nil {
		sig := o.Constructor.Type().(*types.Signature)
		return sig.Results().At(0).Type()
	}
	return types.NewPointer(o.Obj.Type())
}

// Ident returns the name of the option's declaration.
func (o *OptionInfo) Ident() *ast.Ident {
	return o.Spec.Name
}

// Pkg returns the package declaring the option.
func (o *OptionInfo) Pkg() *types.Package {
	return o.Obj.Pkg()
}

// LookupKey is a //enum:lookup or //type:lookup directive on an interface
// method.
type LookupKey struct {
	Family    marker.Family
	Directive marker.Marker
	Owner     *types.TypeName // interface declaring the method
	Method    *types.Func     // annotated interface method
	Ident     *ast.Ident      // method name in the interface declaration

	Accessor    string // generated accessor name
	Multi       bool
	Fold        bool
	Returns     types.Type
	ReturnsExpr string
}

// Key returns the result type of the annotated method, or nil when the
// method does not have the func() K shape.
func (k *LookupKey) Key() types.Type {
	sig, ok := k.Method.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return nil
	}
	return sig.Results().At(0).Type()
}

// ExtendTarget is a const-based enum marked //enum:extend.
type ExtendTarget struct {
	Directive *marker.ExtendEnum
	Obj       *types.TypeName
	Spec      *ast.TypeSpec

	Name      string
	Constants []*types.Const // source order
	Integer   bool
}

// Ident returns the name of the enum type.
func (e *ExtendTarget) Ident() *ast.Ident {
	return e.Spec.Name
}
