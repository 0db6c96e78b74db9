package emit

import (
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"
)

// typeCode converts t into jen code. Named types are qualified by their
// package path; jen drops the qualifier for the file's own package.
func (e *emitter) typeCode(t types.Type) *jen.Statement {
	switch t := t.(type) {
	case *types.Alias:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return jen.Id(obj.Name())
		}
		e.importName(obj.Pkg())
		return jen.Qual(obj.Pkg().Path(), obj.Name())
	case *types.Named:
		obj := t.Obj()
		var s *jen.Statement
		if obj.Pkg() == nil {
			s = jen.Id(obj.Name())
		} else {
			e.importName(obj.Pkg())
			s = jen.Qual(obj.Pkg().Path(), obj.Name())
		}
		if args := t.TypeArgs(); args != nil && args.Len() > 0 {
			codes := make([]jen.Code, args.Len())
			for i := 0; i < args.Len(); i++ {
				codes[i] = e.typeCode(args.At(i))
			}
			s = s.Types(codes...)
		}
		return s
	case *types.Basic:
		if t.Kind() == types.UnsafePointer {
			return jen.Qual("unsafe", "Pointer")
		}
		return jen.Id(t.Name())
	case *types.Pointer:
		return jen.Op("*").Add(e.typeCode(t.Elem()))
	case *types.Slice:
		return jen.Index().Add(e.typeCode(t.Elem()))
	case *types.Array:
		return jen.Index(jen.Lit(int(t.Len()))).Add(e.typeCode(t.Elem()))
	case *types.Map:
		return jen.Map(e.typeCode(t.Key())).Add(e.typeCode(t.Elem()))
	case *types.Chan:
		elem := e.typeCode(t.Elem())
		switch t.Dir() {
		case types.SendOnly:
			return jen.Chan().Op("<-").Add(elem)
		case types.RecvOnly:
			return jen.Op("<-").Chan().Add(elem)
		}
		return jen.Chan().Add(elem)
	case *types.Signature:
		return jen.Func().Add(e.signature(t))
	case *types.Interface:
		if t.Empty() {
			return jen.Id("any")
		}
		return jen.Interface(e.methods(t)...)
	case *types.Struct:
		fields := make([]jen.Code, t.NumFields())
		for i := range fields {
			f := t.Field(i)
			if f.Embedded() {
				fields[i] = e.typeCode(f.Type())
				continue
			}
			fields[i] = jen.Id(f.Name()).Add(e.typeCode(f.Type()))
		}
		return jen.Struct(fields...)
	case *types.TypeParam:
		return jen.Id(t.Obj().Name())
	}
	panic(fmt.Sprintf("emit: unsupported type %T", t))
}

func (e *emitter) signature(sig *types.Signature) *jen.Statement {
	params := make([]jen.Code, sig.Params().Len())
	for i := range params {
		p := sig.Params().At(i)
		if sig.Variadic() && i == len(params)-1 {
			params[i] = jen.Op("...").Add(e.typeCode(p.Type().(*types.Slice).Elem()))
			continue
		}
		params[i] = e.typeCode(p.Type())
	}
	s := jen.Params(params...)
	switch n := sig.Results().Len(); n {
	case 0:
	case 1:
		s.Add(e.typeCode(sig.Results().At(0).Type()))
	default:
		results := make([]jen.Code, n)
		for i := range results {
			results[i] = e.typeCode(sig.Results().At(i).Type())
		}
		s.Params(results...)
	}
	return s
}

func (e *emitter) methods(iface *types.Interface) []jen.Code {
	var out []jen.Code
	for i := 0; i < iface.NumEmbeddeds(); i++ {
		out = append(out, e.typeCode(iface.EmbeddedType(i)))
	}
	for i := 0; i < iface.NumExplicitMethods(); i++ {
		m := iface.ExplicitMethod(i)
		out = append(out, jen.Id(m.Name()).Add(e.signature(m.Type().(*types.Signature))))
	}
	return out
}

// importName pins the local name of pkg so that jen does not guess it from
// the import path.
func (e *emitter) importName(pkg *types.Package) {
	if pkg.Path() == e.path || e.named[pkg.Path()] {
		return
	}
	e.named[pkg.Path()] = true
	e.f.ImportName(pkg.Path(), pkg.Name())
}
