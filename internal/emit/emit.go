// Package emit renders a validated plan into the source of the generated
// collections file.
package emit

import (
	"bytes"
	"go/ast"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/cmmoran/collectiongen/internal/model"
	"github.com/cmmoran/collectiongen/internal/typewalk"
)

const (
	// FileName is the name of the generated file in every package.
	FileName = "collections_gen.go"
	// Header marks the generated file. It matches the form recognised by
	// ast.IsGenerated.
	Header = "Code generated by collectiongen. DO NOT EDIT."
)

const enumoptPath = typewalk.EnumOptPath

type emitter struct {
	f     *jen.File
	path  string
	named map[string]bool
}

// File builds the generated file for plan. A target or extension whose
// rendering panics is left out and returned as a fault; everything else is
// still rendered.
func File(plan *model.Plan) (*jen.File, []*model.Fault) {
	e := &emitter{
		f:     jen.NewFilePathName(plan.Pkg.Path(), plan.Pkg.Name()),
		path:  plan.Pkg.Path(),
		named: make(map[string]bool),
	}
	e.f.HeaderComment(Header)
	e.f.ImportName(enumoptPath, "enumopt")

	var faults []*model.Fault
	for _, pt := range plan.Targets {
		c := &collection{emitter: e, pt: pt}
		if fault := e.isolate(pt.Target.Ident(), pt.Target.Name, c.render); fault != nil {
			faults = append(faults, fault)
		}
	}
	for _, x := range plan.Extends {
		x := &extension{emitter: e, x: x}
		if fault := e.isolate(x.x.Ident(), x.x.Name, x.render); fault != nil {
			faults = append(faults, fault)
		}
	}
	return e.f, faults
}

// isolate builds the declarations of one target and adds them to the file
// only when building completes.
func (e *emitter) isolate(anchor *ast.Ident, subject string, build func() []jen.Code) (fault *model.Fault) {
	defer func() {
		if r := recover(); r != nil {
			fault = &model.Fault{Anchor: anchor, Subject: subject, Value: r}
		}
	}()
	for _, code := range build() {
		e.f.Add(code)
	}
	return nil
}

// decls accumulates top-level declarations, each followed by a blank line.
type decls []jen.Code

func (d *decls) add(comment string, code jen.Code) {
	if comment != "" {
		*d = append(*d, jen.Comment(comment))
	}
	*d = append(*d, code, jen.Line())
}

// Render returns the formatted source of the generated file for plan.
func Render(plan *model.Plan) ([]byte, []*model.Fault, error) {
	f, faults := File(plan)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, faults, errors.Wrapf(err, "render %s", plan.Pkg.Path())
	}
	out, err := imports.Process(FileName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, faults, errors.WithDetail(errors.Wrapf(err, "format %s", plan.Pkg.Path()), buf.String())
	}
	return out, faults, nil
}

func receiver(typ string) *jen.Statement {
	return jen.Params(jen.Id("c").Op("*").Id(typ))
}

func multiline(items ...jen.Code) *jen.Statement {
	return jen.Custom(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, items...)
}
