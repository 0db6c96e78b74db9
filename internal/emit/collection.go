package emit

import (
	"fmt"
	"go/types"

	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/collectiongen/internal/model"
)

// collection renders one enum or type collection. Singleton collections
// store one instance per option; the others store factories and build a new
// instance on every access.
type collection struct {
	*emitter
	pt  *model.PlannedTarget
	out decls
}

func (c *collection) typ() string {
	return c.pt.Target.Name + "Collection"
}

func (c *collection) factory() bool {
	return !c.pt.Target.Singleton
}

// elem is the type handed out by the collection.
func (c *collection) elem() *jen.Statement {
	return c.typeCode(c.pt.Target.Storage())
}

// slot is the type stored per option.
func (c *collection) slot() *jen.Statement {
	if c.factory() {
		return jen.Func().Params().Add(c.elem())
	}
	return c.elem()
}

// value turns a stored slot into the handed-out value.
func (c *collection) value(s *jen.Statement) *jen.Statement {
	if c.factory() {
		return s.Call()
	}
	return s
}

func (c *collection) method(name string) *jen.Statement {
	return jen.Func().Add(receiver(c.typ())).Id(name)
}

func (c *collection) render() []jen.Code {
	c.declare()
	c.constructor()
	c.accessors()
	c.queries()
	c.descriptors()
	if c.pt.HasCategories() {
		c.categories()
	}
	for _, k := range c.pt.Lookups {
		c.lookup(k)
	}
	return c.out
}

func (c *collection) declare() {
	t := c.pt.Target
	c.out.add(fmt.Sprintf("%s is the collection of %s options.", t.Name, t.Obj.Name()),
		jen.Var().Id(t.Name).Op("=").Id("new"+c.typ()).Call())

	embedded := jen.Qual(t.Obj.Pkg().Path(), t.Obj.Name())
	if t.Generic {
		embedded = embedded.Types(c.typeCode(t.TypeParam.Constraint()))
	}
	c.out.add(fmt.Sprintf("%s holds the options discovered for %s.", c.typ(), t.Obj.Name()),
		jen.Type().Id(c.typ()).StructFunc(func(g *jen.Group) {
			g.Add(embedded)
			g.Line()
			g.Id("all").Index().Add(c.slot())
			g.Id("byID").Qual(enumoptPath, "Index").Types(jen.Int(), c.slot())
			g.Id("byName").Qual(enumoptPath, "Index").Types(jen.String(), c.slot())
			if c.pt.HasCategories() {
				g.Id("byCategory").Qual(enumoptPath, "MultiIndex").Types(jen.String(), c.slot())
			}
			for _, k := range c.pt.Lookups {
				idx := "Index"
				if k.Multi {
					idx = "MultiIndex"
				}
				g.Id(lookupField(k)).Qual(enumoptPath, idx).Types(c.keyType(k), c.slot())
			}
		}))
}

func (c *collection) constructor() {
	var entries, names, categories []jen.Code
	for i, o := range c.pt.Concrete {
		entry := c.instance(o.OptionInfo)
		if c.factory() {
			entry = jen.Func().Params().Add(c.elem()).Block(jen.Return(entry))
		}
		entries = append(entries, entry)
		if o.RuntimeName {
			names = append(names, c.value(jen.Id("c").Dot("all").Index(jen.Lit(i))).Dot("Name").Call())
		} else {
			names = append(names, jen.Lit(o.Name))
		}
		categories = append(categories, jen.Lit(o.Category))
	}

	slot := "v"
	if c.factory() {
		slot = "f"
	}
	key := func(result jen.Code, call func(v *jen.Statement) *jen.Statement) jen.Code {
		return jen.Func().Params(jen.Id(slot).Add(c.slot())).Add(result).Block(
			jen.Return(call(c.value(jen.Id(slot)))),
		)
	}

	body := []jen.Code{
		jen.Id("c").Op(":=").Op("&").Id(c.typ()).Values(jen.Dict{
			jen.Id("all"): jen.Index().Add(c.slot()).Add(multiline(entries...)),
		}),
		c.byID(key(jen.Int(), func(v *jen.Statement) *jen.Statement { return v.Dot("ID").Call() })),
		jen.Id("c").Dot("byName").Op("=").Qual(enumoptPath, "NewKeyedIndex").Call(
			jen.Index().String().Values(names...),
			jen.Id("c").Dot("all"),
		),
	}
	if c.pt.HasCategories() {
		body = append(body, jen.Id("c").Dot("byCategory").Op("=").Qual(enumoptPath, "NewKeyedMultiIndex").Call(
			jen.Index().String().Values(categories...),
			jen.Id("c").Dot("all"),
		))
	}
	for _, k := range c.pt.Lookups {
		ctor := "NewIndex"
		if k.Multi {
			ctor = "NewMultiIndex"
		}
		if k.Fold {
			ctor = "NewFoldedIndex"
			if k.Multi {
				ctor = "NewFoldedMultiIndex"
			}
		}
		method := k.Method.Name()
		fold := k.Fold
		skip := c.pt.Unindexed[k]
		body = append(body, jen.Id("c").Dot(lookupField(k)).Op("=").Qual(enumoptPath, ctor).Call(
			c.indexed(func(o *model.PlannedOption) bool { return !skip[o.OptionInfo] }),
			key(c.keyType(k), func(v *jen.Statement) *jen.Statement {
				call := v.Dot(method).Call()
				if fold {
					return jen.String().Call(call)
				}
				return call
			}),
		))
	}
	body = append(body, jen.Return(jen.Id("c")))

	c.out.add("", jen.Func().Id("new"+c.typ()).Params().Op("*").Id(c.typ()).Block(body...))
}

// byID indexes the options by ID. Options without a declared id and without
// a constructor would all report 0, so they are left out of the index.
func (c *collection) byID(key jen.Code) jen.Code {
	return jen.Id("c").Dot("byID").Op("=").Qual(enumoptPath, "NewIndex").Call(
		c.indexed(func(o *model.PlannedOption) bool {
			return o.Constructor != nil || (o.HasID && literalIdentity(o.OptionInfo))
		}),
		key,
	)
}

// indexed is c.all, narrowed with enumopt.Select when keep rejects an option.
func (c *collection) indexed(keep func(*model.PlannedOption) bool) jen.Code {
	mask := make([]jen.Code, len(c.pt.Concrete))
	partial := false
	for i, o := range c.pt.Concrete {
		ok := keep(o)
		partial = partial || !ok
		mask[i] = jen.Lit(ok)
	}
	if !partial {
		return jen.Id("c").Dot("all")
	}
	return jen.Qual(enumoptPath, "Select").Call(jen.Index().Bool().Values(mask...), jen.Id("c").Dot("all"))
}

// instance is the expression creating one option: its constructor, a
// literal carrying the declared identity, or the zero value.
func (c *collection) instance(o *model.OptionInfo) *jen.Statement {
	c.importName(o.Pkg())
	path := o.Pkg().Path()
	switch {
	case o.Constructor != nil:
		return jen.Qual(path, o.Constructor.Name()).Call()
	case literalIdentity(o):
		return jen.Op("&").Qual(path, o.Obj.Name()).Values(jen.Dict{
			jen.Id("Base"): jen.Qual(enumoptPath, "NewBase").Types(c.typeCode(o.Base)).Call(jen.Lit(o.ID), jen.Lit(o.Name)),
		})
	}
	return jen.Op("&").Qual(path, o.Obj.Name()).Values()
}

// literalIdentity reports whether instance writes the declared id and name
// into the option's Base.
func literalIdentity(o *model.OptionInfo) bool {
	return o.Explicit && o.DirectBase && o.Base != nil
}

func (c *collection) accessors() {
	for i, o := range c.pt.Concrete {
		if o.Accessor == "" {
			continue
		}
		c.out.add(fmt.Sprintf("%s returns the %s option.", o.Accessor, o.Name),
			c.method(o.Accessor).Params().Add(c.elem()).Block(
				jen.Return(c.value(jen.Id("c").Dot("all").Index(jen.Lit(i)))),
			))
	}
}

func (c *collection) queries() {
	var all []jen.Code
	if c.factory() {
		all = []jen.Code{
			jen.Id("out").Op(":=").Make(jen.Index().Add(c.elem()), jen.Len(jen.Id("c").Dot("all"))),
			jen.For(jen.List(jen.Id("i"), jen.Id("f")).Op(":=").Range().Id("c").Dot("all")).Block(
				jen.Id("out").Index(jen.Id("i")).Op("=").Id("f").Call(),
			),
			jen.Return(jen.Id("out")),
		}
	} else {
		all = []jen.Code{jen.Return(jen.Qual("slices", "Clone").Call(jen.Id("c").Dot("all")))}
	}
	c.out.add("All returns every option in declaration order.",
		c.method("All").Params().Index().Add(c.elem()).Block(all...))

	c.out.add("Count returns the number of options.",
		c.method("Count").Params().Int().Block(jen.Return(jen.Len(jen.Id("c").Dot("all")))))

	c.out.add("Any reports whether the collection has at least one option.",
		c.method("Any").Params().Bool().Block(jen.Return(jen.Len(jen.Id("c").Dot("all")).Op(">").Lit(0))))

	for _, q := range []struct {
		suffix string
		param  string
		typ    *jen.Statement
		field  string
	}{
		{"ID", "id", jen.Int(), "byID"},
		{"Name", "name", jen.String(), "byName"},
	} {
		c.out.add(fmt.Sprintf("GetBy%s returns the option with the given %s, or nil.", q.suffix, q.param),
			c.method("GetBy"+q.suffix).Params(jen.Id(q.param).Add(q.typ)).Add(c.elem()).Block(
				c.get(q.field, jen.Id(q.param), false)...,
			))
		c.out.add(fmt.Sprintf("TryGetBy%s returns the option with the given %s and whether it exists.", q.suffix, q.param),
			c.method("TryGetBy"+q.suffix).Params(jen.Id(q.param).Add(q.typ.Clone())).Params(c.elem(), jen.Bool()).Block(
				c.get(q.field, jen.Id(q.param), true)...,
			))
	}
}

// get is the body of a single-value index read.
func (c *collection) get(field string, key jen.Code, withOK bool) []jen.Code {
	read := jen.Id("c").Dot(field).Dot("Get").Call(key)
	if !c.factory() {
		if withOK {
			return []jen.Code{jen.Return(read)}
		}
		return []jen.Code{
			jen.List(jen.Id("v"), jen.Id("_")).Op(":=").Add(read),
			jen.Return(jen.Id("v")),
		}
	}
	found, missing := []jen.Code{jen.Id("f").Call()}, []jen.Code{jen.Nil()}
	if withOK {
		found = append(found, jen.True())
		missing = append(missing, jen.False())
	}
	return []jen.Code{
		jen.If(jen.List(jen.Id("f"), jen.Id("ok")).Op(":=").Add(read), jen.Id("ok")).Block(
			jen.Return(found...),
		),
		jen.Return(missing...),
	}
}

func (c *collection) descriptors() {
	items := make([]jen.Code, 0, len(c.pt.Descriptors))
	for _, o := range c.pt.Descriptors {
		d := jen.Dict{
			jen.Id("Type"): jen.Lit(c.qualifiedName(o.Obj)),
			jen.Id("Name"): jen.Lit(o.Name),
		}
		if o.HasID {
			d[jen.Id("ID")] = jen.Lit(o.ID)
			d[jen.Id("HasID")] = jen.True()
		}
		if o.Category != "" {
			d[jen.Id("Category")] = jen.Lit(o.Category)
		}
		if o.Abstract {
			d[jen.Id("Abstract")] = jen.True()
		}
		items = append(items, jen.Values(d))
	}
	c.out.add("Descriptors describes every option, including abstract ones.",
		c.method("Descriptors").Params().Index().Qual(enumoptPath, "Descriptor").Block(
			jen.Return(jen.Index().Qual(enumoptPath, "Descriptor").Add(multiline(items...))),
		))
}

func (c *collection) qualifiedName(obj *types.TypeName) string {
	if obj.Pkg() == nil || obj.Pkg().Path() == c.path {
		return obj.Name()
	}
	return obj.Pkg().Name() + "." + obj.Name()
}

func (c *collection) categories() {
	c.out.add("ByCategory returns the options declaring the given category.",
		c.method("ByCategory").Params(jen.Id("category").String()).Index().Add(c.elem()).Block(
			c.many("byCategory", jen.Id("category"), nil)...,
		))
}

// many is the body of a multi-value index read, asserting each value to
// returns when it is set.
func (c *collection) many(field string, key jen.Code, returns types.Type) []jen.Code {
	read := jen.Id("c").Dot(field).Dot("Get").Call(key)
	if !c.factory() && returns == nil {
		return []jen.Code{jen.Return(read)}
	}
	result := c.elem()
	if returns != nil {
		result = c.typeCode(returns)
	}
	v := c.value(jen.Id("v"))
	var add jen.Code = jen.Id("out").Op("=").Append(jen.Id("out"), v)
	if returns != nil {
		add = jen.If(jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Add(v).Assert(c.typeCode(returns)), jen.Id("ok")).Block(
			jen.Id("out").Op("=").Append(jen.Id("out"), jen.Id("r")),
		)
	}
	return []jen.Code{
		jen.Id("vs").Op(":=").Add(read),
		jen.Id("out").Op(":=").Make(jen.Index().Add(result), jen.Lit(0), jen.Len(jen.Id("vs"))),
		jen.For(jen.List(jen.Id("_"), jen.Id("v")).Op(":=").Range().Id("vs")).Block(add),
		jen.Return(jen.Id("out")),
	}
}

func (c *collection) lookup(k *model.LookupKey) {
	key := jen.Id("key")
	if k.Fold {
		key = jen.String().Call(jen.Id("key"))
	}
	param := jen.Id("key").Add(c.typeCode(k.Key()))
	doc := fmt.Sprintf("%s returns the option whose %s is key.", k.Accessor, k.Method.Name())
	if k.Multi {
		doc = fmt.Sprintf("%s returns the options whose %s is key.", k.Accessor, k.Method.Name())
		result := c.elem()
		if k.Returns != nil {
			result = c.typeCode(k.Returns)
		}
		c.out.add(doc, c.method(k.Accessor).Params(param).Index().Add(result).Block(
			c.many(lookupField(k), key, k.Returns)...,
		))
		return
	}
	if k.Returns == nil {
		c.out.add(doc, c.method(k.Accessor).Params(param).Params(c.elem(), jen.Bool()).Block(
			c.get(lookupField(k), key, true)...,
		))
		return
	}
	read := jen.Id("c").Dot(lookupField(k)).Dot("Get").Call(key)
	c.out.add(doc, c.method(k.Accessor).Params(param).Params(c.typeCode(k.Returns), jen.Bool()).Block(
		jen.List(jen.Id("v"), jen.Id("ok")).Op(":=").Add(read),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.Nil(), jen.False())),
		jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Add(c.value(jen.Id("v"))).Assert(c.typeCode(k.Returns)),
		jen.Return(jen.Id("r"), jen.Id("ok")),
	))
}

func (c *collection) keyType(k *model.LookupKey) *jen.Statement {
	if k.Fold {
		return jen.String()
	}
	return c.typeCode(k.Key())
}

func lookupField(k *model.LookupKey) string {
	return "lookup" + k.Accessor
}
