package discovery

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"

	"github.com/jinzhu/inflection"

	"github.com/cmmoran/collectiongen/internal/marker"
	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/internal/typewalk"
)

// Collector accumulates the directives of one package. Analyzers feed it
// declaration by declaration; Discover feeds it whole files.
type Collector struct {
	unit  Unit
	reg   *model.Registry
	funcs map[*types.Func]*ast.FuncDecl

	// foreign collectors scan sibling packages for global collections and
	// only record enum options and lookups.
	foreign bool
}

// NewCollector returns a collector for u.
func NewCollector(u Unit) *Collector {
	return &Collector{
		unit: u,
		reg:  &model.Registry{Fset: u.Fset, Pkg: u.Pkg},
	}
}

func newForeignCollector(u Unit) *Collector {
	c := NewCollector(u)
	c.foreign = true
	return c
}

// Add records the directives attached to the type specs of gd. Other
// declarations are ignored.
func (c *Collector) Add(file *ast.File, gd *ast.GenDecl) {
	if gd.Tok != token.TYPE {
		return
	}
	for _, s := range gd.Specs {
		ts, ok := s.(*ast.TypeSpec)
		if !ok {
			continue
		}
		doc := ts.Doc
		if doc == nil && !gd.Lparen.IsValid() {
			doc = gd.Doc
		}
		if marker.HasDirective(doc) {
			c.guard(ts.Name, ts.Name.Name, func() { c.typeSpec(file, ts, doc) })
		}
		if it, ok := ts.Type.(*ast.InterfaceType); ok {
			c.guard(ts.Name, ts.Name.Name, func() { c.interfaceMethods(file, ts, it) })
		}
	}
}

// guard turns a panic inside fn into a recorded fault.
func (c *Collector) guard(anchor *ast.Ident, subject string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if c.foreign {
				return
			}
			c.reg.Faults = append(c.reg.Faults, &model.Fault{Anchor: anchor, Subject: subject, Value: r})
		}
	}()
	fn()
}

func (c *Collector) invalid(m marker.Marker, anchor *ast.Ident, format string, args ...any) {
	if c.foreign {
		return
	}
	c.reg.Invalid = append(c.reg.Invalid, &model.Malformed{
		Err:    &marker.Error{Comment: m.Source().Comment, Msg: fmt.Sprintf(format, args...)},
		Anchor: anchor,
	})
}

func (c *Collector) typeSpec(file *ast.File, ts *ast.TypeSpec, doc *ast.CommentGroup) {
	obj, _ := c.unit.Info.Defs[ts.Name].(*types.TypeName)
	if obj == nil {
		return
	}
	ms, errs := marker.ParseGroup(doc)
	if !c.foreign {
		for _, e := range errs {
			c.reg.Invalid = append(c.reg.Invalid, &model.Malformed{Err: e, Anchor: ts.Name})
		}
	}
	for _, m := range ms {
		if c.foreign {
			if em, ok := m.(*marker.EnumOption); ok {
				c.enumOption(ts, obj, em)
			}
			continue
		}
		switch m := m.(type) {
		case *marker.EnumOption:
			c.enumOption(ts, obj, m)
		case *marker.TypeOption:
			c.typeOption(ts, obj, m)
		case *marker.EnumCollection:
			c.enumCollection(file, ts, obj, m)
		case *marker.TypeCollection:
			c.typeCollection(file, ts, obj, m)
		case *marker.ExtendEnum:
			c.extend(ts, obj, m)
		default:
			c.invalid(m, ts.Name, "%s belongs on an interface method", m.Kind())
		}
	}
}

func (c *Collector) interfaceMethods(file *ast.File, ts *ast.TypeSpec, it *ast.InterfaceType) {
	if it.Methods == nil {
		return
	}
	owner, _ := c.unit.Info.Defs[ts.Name].(*types.TypeName)
	if owner == nil {
		return
	}
	for _, f := range it.Methods.List {
		if !marker.HasDirective(f.Doc) {
			continue
		}
		ms, errs := marker.ParseGroup(f.Doc)
		anchor := ts.Name
		if len(f.Names) > 0 {
			anchor = f.Names[0]
		}
		if !c.foreign {
			for _, e := range errs {
				c.reg.Invalid = append(c.reg.Invalid, &model.Malformed{Err: e, Anchor: anchor})
			}
		}
		var method *types.Func
		if len(f.Names) > 0 {
			method, _ = c.unit.Info.Defs[f.Names[0]].(*types.Func)
		}
		for _, m := range ms {
			key := &model.LookupKey{Directive: m, Owner: owner, Method: method, Ident: anchor}
			switch m := m.(type) {
			case *marker.EnumLookup:
				key.Family = marker.FamilyEnum
				key.Accessor, key.Multi, key.Fold = m.Method, m.Multi, m.Fold
				key.ReturnsExpr = m.Returns
				key.Returns = c.resolveType(file, m.Returns)
			case *marker.TypeLookup:
				key.Family = marker.FamilyType
				key.Accessor, key.Multi, key.Fold = m.Method, m.Multi, m.Fold
			default:
				c.invalid(m, anchor, "%s belongs on a type declaration", m.Kind())
				continue
			}
			if method == nil {
				c.invalid(m, anchor, "%s must annotate a method, not an embedded interface", m.Kind())
				continue
			}
			c.reg.Lookups = append(c.reg.Lookups, key)
		}
	}
}

func (c *Collector) enumOption(ts *ast.TypeSpec, obj *types.TypeName, m *marker.EnumOption) {
	o := &model.OptionInfo{
		Family:    marker.FamilyEnum,
		Directive: m,
		Obj:       obj,
		Spec:      ts,
		ID:        m.ID,
		HasID:     m.HasID,
		Category:  m.Category,
		Abstract:  m.Abstract || isAbstract(ts, obj),
		Explicit:  m.Name != "" || m.HasID,
		Local:     !c.foreign,
	}
	c.identity(o, m.Name)
	c.reg.Options = append(c.reg.Options, o)
}

func (c *Collector) typeOption(ts *ast.TypeSpec, obj *types.TypeName, m *marker.TypeOption) {
	o := &model.OptionInfo{
		Family:     marker.FamilyType,
		Directive:  m,
		Obj:        obj,
		Spec:       ts,
		Category:   m.Category,
		Abstract:   m.Abstract || isAbstract(ts, obj),
		Explicit:   m.Name != "",
		Collection: m.Collection,
		Local:      true,
	}
	c.identity(o, m.Name)
	c.reg.Options = append(c.reg.Options, o)
}

func isAbstract(ts *ast.TypeSpec, obj *types.TypeName) bool {
	return ts.TypeParams != nil || types.IsInterface(obj.Type())
}

// identity fills the base, constructor, display name and id of o.
func (c *Collector) identity(o *model.OptionInfo, name string) {
	o.Base, _ = typewalk.BaseArg(o.Obj.Type())
	o.DirectBase = typewalk.EmbedsDirectly(o.Obj.Type(), typewalk.IsBase)
	o.Constructor = c.constructor(o.Obj)

	lit := c.newBaseLiteral(o.Constructor)
	switch {
	case name != "":
		o.Name = name
	case lit.hasName:
		o.Name = lit.name
	default:
		o.Name = o.Obj.Name()
		o.RuntimeName = o.Constructor != nil
	}
	if !o.HasID && lit.hasID {
		o.ID, o.HasID = lit.id, true
	}
}

// constructor returns the package-level New<Type> function when it takes no
// arguments and returns the type or a pointer to it.
func (c *Collector) constructor(obj *types.TypeName) *types.Func {
	fn, ok := obj.Pkg().Scope().Lookup("New" + obj.Name()).(*types.Func)
	if !ok {
		return nil
	}
	sig := fn.Type().(*types.Signature)
	if sig.TypeParams().Len() != 0 || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return nil
	}
	res := sig.Results().At(0).Type()
	if p, ok := res.(*types.Pointer); ok {
		res = p.Elem()
	}
	if named, ok := types.Unalias(res).(*types.Named); ok && named.Obj() == obj {
		return fn
	}
	return nil
}

type baseLiteral struct {
	id      int
	hasID   bool
	name    string
	hasName bool
}

// newBaseLiteral reads the constant arguments of the first enumopt.NewBase
// call in the body of fn.
func (c *Collector) newBaseLiteral(fn *types.Func) baseLiteral {
	var lit baseLiteral
	fd := c.funcDecl(fn)
	if fd == nil || fd.Body == nil {
		return lit
	}
	found := false
	ast.Inspect(fd.Body, func(n ast.Node) bool {
		if found {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) != 2 || !c.isNewBase(call.Fun) {
			return true
		}
		found = true
		if v := c.constValue(call.Args[0]); v != nil && v.Kind() == constant.Int {
			if id, exact := constant.Int64Val(v); exact {
				lit.id, lit.hasID = int(id), true
			}
		}
		if v := c.constValue(call.Args[1]); v != nil && v.Kind() == constant.String {
			lit.name, lit.hasName = constant.StringVal(v), true
		}
		return false
	})
	return lit
}

func (c *Collector) isNewBase(fun ast.Expr) bool {
	switch f := fun.(type) {
	case *ast.IndexExpr:
		fun = f.X
	case *ast.IndexListExpr:
		fun = f.X
	}
	var id *ast.Ident
	switch f := fun.(type) {
	case *ast.Ident:
		id = f
	case *ast.SelectorExpr:
		id = f.Sel
	default:
		return false
	}
	fn, ok := c.unit.Info.Uses[id].(*types.Func)
	return ok && fn.Pkg() != nil && fn.Pkg().Path() == typewalk.EnumOptPath && fn.Name() == "NewBase"
}

func (c *Collector) constValue(e ast.Expr) constant.Value {
	if tv, ok := c.unit.Info.Types[e]; ok {
		return tv.Value
	}
	return nil
}

func (c *Collector) funcDecl(fn *types.Func) *ast.FuncDecl {
	if fn == nil {
		return nil
	}
	if c.funcs == nil {
		c.funcs = make(map[*types.Func]*ast.FuncDecl)
		for _, f := range c.unit.Files {
			for _, d := range f.Decls {
				fd, ok := d.(*ast.FuncDecl)
				if !ok {
					continue
				}
				if obj, ok := c.unit.Info.Defs[fd.Name].(*types.Func); ok {
					c.funcs[obj] = fd
				}
			}
		}
	}
	if fd, ok := c.funcs[fn]; ok {
		return fd
	}
	return c.funcs[fn.Origin()]
}

// lookupValues records, for every option of this collector, the constant
// each lookup method returns.
func (c *Collector) lookupValues(keys []*model.LookupKey) {
	for _, o := range c.reg.Options {
		if o.Abstract {
			continue
		}
		for _, k := range keys {
			if k.Method == nil {
				continue
			}
			name := k.Method.Name()
			obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(o.Obj.Type()), true, o.Obj.Pkg(), name)
			fn, ok := obj.(*types.Func)
			if !ok {
				continue
			}
			if v := c.returnedConstant(fn); v != nil {
				if o.LookupValues == nil {
					o.LookupValues = make(map[string]constant.Value)
				}
				o.LookupValues[name] = v
			}
		}
	}
}

// returnedConstant returns the value of a method whose body is a single
// return of a constant expression.
func (c *Collector) returnedConstant(fn *types.Func) constant.Value {
	fd := c.funcDecl(fn)
	if fd == nil || fd.Body == nil || len(fd.Body.List) != 1 {
		return nil
	}
	ret, ok := fd.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return nil
	}
	return c.constValue(ret.Results[0])
}

func (c *Collector) enumCollection(file *ast.File, ts *ast.TypeSpec, obj *types.TypeName, m *marker.EnumCollection) {
	t := &model.CollectionTarget{
		Family:      marker.FamilyEnum,
		Directive:   m,
		Obj:         obj,
		Spec:        ts,
		File:        file,
		Name:        m.Name,
		ReturnsExpr: m.Returns,
		Singleton:   m.Singleton,
		Generic:     m.Generic || ts.TypeParams != nil,
		Global:      m.Global,
	}
	if named, ok := obj.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
		t.TypeParam = named.TypeParams().At(0)
	}
	if arg, ok := typewalk.CollectionArg(obj.Type()); ok {
		t.HasAncestor = true
		if tp, ok := arg.(*types.TypeParam); ok {
			t.TypeParam = tp
			t.Element = tp.Constraint()
		} else {
			t.Element = arg
		}
	}
	t.Returns = c.resolveType(file, m.Returns)
	c.reg.Targets = append(c.reg.Targets, t)
}

func (c *Collector) typeCollection(file *ast.File, ts *ast.TypeSpec, obj *types.TypeName, m *marker.TypeCollection) {
	t := &model.CollectionTarget{
		Family:      marker.FamilyType,
		Directive:   m,
		Obj:         obj,
		Spec:        ts,
		File:        file,
		Name:        m.Name,
		ElementExpr: m.Base,
		ReturnsExpr: m.Returns,
		Singleton:   true,
		HasAncestor: true,
	}
	t.Element = c.resolveType(file, m.Base)
	t.Returns = c.resolveType(file, m.Returns)
	if t.Name == "" && t.Element != nil {
		if named, ok := types.Unalias(t.Element).(*types.Named); ok {
			t.Name = inflection.Plural(named.Obj().Name())
		}
	}
	c.reg.Targets = append(c.reg.Targets, t)
}

func (c *Collector) extend(ts *ast.TypeSpec, obj *types.TypeName, m *marker.ExtendEnum) {
	e := &model.ExtendTarget{Directive: m, Obj: obj, Spec: ts, Name: m.Name}
	if e.Name == "" {
		e.Name = inflection.Plural(obj.Name())
	}
	if b, ok := obj.Type().Underlying().(*types.Basic); ok {
		e.Integer = b.Info()&types.IsInteger != 0
	}
	c.reg.Extends = append(c.reg.Extends, e)
}

// extendConstants collects the package-level constants of every extended
// enum type in source order.
func (c *Collector) extendConstants() {
	if len(c.reg.Extends) == 0 {
		return
	}
	scope := c.unit.Pkg.Scope()
	for _, e := range c.reg.Extends {
		e.Constants = nil
		for _, name := range scope.Names() {
			k, ok := scope.Lookup(name).(*types.Const)
			if !ok || name == "_" || !types.Identical(k.Type(), e.Obj.Type()) {
				continue
			}
			e.Constants = append(e.Constants, k)
		}
		sortByPosition(c.unit.Fset, e.Constants, func(k *types.Const) (string, token.Pos) {
			return "", k.Pos()
		})
	}
}

// resolveType resolves a type name written in a directive, either declared
// in the package or qualified by an import of file.
func (c *Collector) resolveType(file *ast.File, expr string) types.Type {
	if expr == "" {
		return nil
	}
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return nil
	}
	switch x := e.(type) {
	case *ast.Ident:
		if tn, ok := c.unit.Pkg.Scope().Lookup(x.Name).(*types.TypeName); ok {
			return tn.Type()
		}
		if tn, ok := types.Universe.Lookup(x.Name).(*types.TypeName); ok {
			return tn.Type()
		}
	case *ast.SelectorExpr:
		qual, ok := x.X.(*ast.Ident)
		if !ok || file == nil {
			return nil
		}
		for _, imp := range file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			pkg := importedPackage(c.unit.Pkg, path)
			if pkg == nil {
				continue
			}
			name := pkg.Name()
			if imp.Name != nil {
				name = imp.Name.Name
			}
			if name != qual.Name {
				continue
			}
			if tn, ok := pkg.Scope().Lookup(x.Sel.Name).(*types.TypeName); ok && tn.Exported() {
				return tn.Type()
			}
		}
	}
	return nil
}

func importedPackage(pkg *types.Package, path string) *types.Package {
	for _, p := range pkg.Imports() {
		if p.Path() == path {
			return p
		}
	}
	return nil
}
