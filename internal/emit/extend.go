package emit

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/collectiongen/internal/model"
)

// extension renders the collection wrapping a const-based enum. Constant
// identifiers serve as display names.
type extension struct {
	*emitter
	x   *model.ExtendTarget
	out decls
}

func (x *extension) typ() string {
	return x.x.Name + "Collection"
}

func (x *extension) method(name string) *jen.Statement {
	return jen.Func().Add(receiver(x.typ())).Id(name)
}

func (x *extension) elem() *jen.Statement {
	return x.typeCode(x.x.Obj.Type())
}

func (x *extension) render() []jen.Code {
	e := x.x
	x.out.add(fmt.Sprintf("%s is the collection of %s values.", e.Name, e.Obj.Name()),
		jen.Var().Id(e.Name).Op("=").Id("new"+x.typ()).Call())

	x.out.add(fmt.Sprintf("%s holds the declared %s constants.", x.typ(), e.Obj.Name()),
		jen.Type().Id(x.typ()).StructFunc(func(g *jen.Group) {
			g.Id("all").Index().Add(x.elem())
			g.Id("byName").Qual(enumoptPath, "Index").Types(jen.String(), x.elem())
			g.Id("names").Qual(enumoptPath, "Index").Types(x.elem(), jen.String())
			if e.Integer {
				g.Id("byID").Qual(enumoptPath, "Index").Types(jen.Int(), x.elem())
			}
		}))

	values := make([]jen.Code, len(e.Constants))
	names := make([]jen.Code, len(e.Constants))
	for i, k := range e.Constants {
		values[i] = jen.Qual(k.Pkg().Path(), k.Name())
		names[i] = jen.Lit(k.Name())
	}
	body := []jen.Code{
		jen.Id("names").Op(":=").Index().String().Add(multiline(names...)),
		jen.Id("c").Op(":=").Op("&").Id(x.typ()).Values(jen.Dict{
			jen.Id("all"): jen.Index().Add(x.elem()).Add(multiline(values...)),
		}),
		jen.Id("c").Dot("byName").Op("=").Qual(enumoptPath, "NewKeyedIndex").Call(jen.Id("names"), jen.Id("c").Dot("all")),
		jen.Id("c").Dot("names").Op("=").Qual(enumoptPath, "NewKeyedIndex").Call(jen.Id("c").Dot("all"), jen.Id("names")),
	}
	if e.Integer {
		body = append(body, jen.Id("c").Dot("byID").Op("=").Qual(enumoptPath, "NewIndex").Call(
			jen.Id("c").Dot("all"),
			jen.Func().Params(jen.Id("v").Add(x.elem())).Int().Block(jen.Return(jen.Int().Call(jen.Id("v")))),
		))
	}
	body = append(body, jen.Return(jen.Id("c")))
	x.out.add("", jen.Func().Id("new"+x.typ()).Params().Op("*").Id(x.typ()).Block(body...))

	x.out.add("All returns every declared value in declaration order.",
		x.method("All").Params().Index().Add(x.elem()).Block(
			jen.Return(jen.Qual("slices", "Clone").Call(jen.Id("c").Dot("all"))),
		))
	x.out.add("Count returns the number of declared values.",
		x.method("Count").Params().Int().Block(jen.Return(jen.Len(jen.Id("c").Dot("all")))))
	x.out.add("Any reports whether at least one value is declared.",
		x.method("Any").Params().Bool().Block(jen.Return(jen.Len(jen.Id("c").Dot("all")).Op(">").Lit(0))))

	type query struct {
		suffix, param, field string
		typ                  func() *jen.Statement
	}
	queries := []query{{"Name", "name", "byName", jen.String}}
	if e.Integer {
		queries = append(queries, query{"ID", "id", "byID", jen.Int})
	}
	for _, q := range queries {
		read := jen.Id("c").Dot(q.field).Dot("Get").Call(jen.Id(q.param))
		x.out.add(fmt.Sprintf("GetBy%s returns the value with the given %s, or the zero value.", q.suffix, q.param),
			x.method("GetBy"+q.suffix).Params(jen.Id(q.param).Add(q.typ())).Add(x.elem()).Block(
				jen.List(jen.Id("v"), jen.Id("_")).Op(":=").Add(read),
				jen.Return(jen.Id("v")),
			))
		x.out.add(fmt.Sprintf("TryGetBy%s returns the value with the given %s and whether it exists.", q.suffix, q.param),
			x.method("TryGetBy"+q.suffix).Params(jen.Id(q.param).Add(q.typ())).Params(x.elem(), jen.Bool()).Block(
				jen.Return(jen.Id("c").Dot(q.field).Dot("Get").Call(jen.Id(q.param))),
			))
	}

	x.out.add("NameOf returns the constant name of v, or \"\" when v is not declared.",
		x.method("NameOf").Params(jen.Id("v").Add(x.elem())).String().Block(
			jen.List(jen.Id("name"), jen.Id("_")).Op(":=").Id("c").Dot("names").Dot("Get").Call(jen.Id("v")),
			jen.Return(jen.Id("name")),
		))
	return x.out
}
