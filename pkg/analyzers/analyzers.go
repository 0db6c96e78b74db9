// Package analyzers reports collectiongen diagnostics through the
// golang.org/x/tools/go/analysis framework, for use with go vet, gopls and
// multichecker drivers.
//
// Every analyzer shares one discovery and validation pass per package and
// reports the diagnostic IDs it owns. Suggested fixes are attached where the
// diagnostic offers one.
package analyzers

import (
	"context"
	"go/ast"
	"reflect"
	"slices"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/discovery"
	"github.com/cmmoran/collectiongen/internal/validate"
)

// directives runs discovery and validation once per package. Its result is
// the *validate.Report every reporting analyzer reads.
var directives = &analysis.Analyzer{
	Name:       "collectiondirectives",
	Doc:        "discover and validate collectiongen directives",
	Requires:   []*analysis.Analyzer{inspect.Analyzer},
	Run:        runDirectives,
	ResultType: reflect.TypeOf((*validate.Report)(nil)),
}

func runDirectives(pass *analysis.Pass) (any, error) {
	c := discovery.NewCollector(discovery.Unit{
		Fset:  pass.Fset,
		Files: pass.Files,
		Pkg:   pass.Pkg,
		Info:  pass.TypesInfo,
	})

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	var (
		file      *ast.File
		generated bool
	)
	insp.Preorder([]ast.Node{(*ast.File)(nil), (*ast.GenDecl)(nil)}, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.File:
			file, generated = n, ast.IsGenerated(n)
		case *ast.GenDecl:
			if !generated {
				c.Add(file, n)
			}
		}
	})

	reg, err := c.Finish(context.Background())
	if err != nil {
		return nil, err
	}
	return validate.Validate(reg), nil
}

// owners maps every diagnostic ID to the analyzer reporting it.
var owners = make(map[diag.ID]*analysis.Analyzer)

// reporter builds an analyzer that reports the diagnostics with the given
// IDs.
func reporter(name, doc string, ids ...diag.ID) *analysis.Analyzer {
	a := &analysis.Analyzer{
		Name:     name,
		Doc:      doc,
		Requires: []*analysis.Analyzer{directives},
		Run: func(pass *analysis.Pass) (any, error) {
			report := pass.ResultOf[directives].(*validate.Report)
			for _, d := range report.Diagnostics.Items() {
				if slices.Contains(ids, d.ID) {
					pass.Report(convert(d))
				}
			}
			return nil, nil
		},
	}
	for _, id := range ids {
		owners[id] = a
	}
	return a
}

// Owner returns the analyzer reporting id, or nil.
func Owner(id diag.ID) *analysis.Analyzer {
	return owners[id]
}

func convert(d diag.Diagnostic) analysis.Diagnostic {
	out := analysis.Diagnostic{
		Pos:      d.Pos,
		End:      d.End,
		Category: string(d.ID),
		Message:  d.String(),
	}
	for _, f := range d.Fixes {
		sf := analysis.SuggestedFix{Message: f.Title}
		for _, e := range f.Edits {
			sf.TextEdits = append(sf.TextEdits, analysis.TextEdit{Pos: e.Pos, End: e.End, NewText: []byte(e.NewText)})
		}
		out.SuggestedFixes = append(out.SuggestedFixes, sf)
	}
	return out
}

var (
	// CollectionName reports collections without a name (ENH008) and
	// offers to add the default one.
	CollectionName = reporter("collectionname",
		"check that every //enum:collection declares a name",
		diag.MissingCollectionName)

	// Inheritance reports collections not embedding enumopt.CollectionBase
	// (ENH009).
	Inheritance = reporter("inheritance",
		"check that enum collections embed enumopt.CollectionBase",
		diag.MissingBaseInheritance)

	// GenericConstraint reports generic collections whose type parameter is
	// not constrained by a non-generic interface (ENH010).
	GenericConstraint = reporter("genericconstraint",
		"check the type parameter constraint of generic collections",
		diag.GenericMissingConstraint)

	// LookupValues reports single-valued lookups with duplicate keys
	// (ENH006) and offers to mark them multi.
	LookupValues = reporter("lookupvalues",
		"check that single-valued lookups have unique keys",
		diag.DuplicateLookupValue)

	// EnumCollections reports the remaining enhanced-enum diagnostics.
	EnumCollections = reporter("enumcollections",
		"check enum options, collections, lookups and extensions",
		diag.InternalError,
		diag.DuplicateCollectionName,
		diag.DuplicateOptionName,
		diag.DuplicateOptionID,
		diag.NotAssignable,
		diag.NoMatchingCollection,
		diag.MalformedDirective,
		diag.InvalidLookupMethod,
		diag.UnreachableGlobalOption,
		diag.MissingConstructor,
	)

	// TypeCollections reports type-collection diagnostics (TC001-TC005).
	TypeCollections = reporter("typecollections",
		"check type options and type collections",
		diag.TypeCollectionMissingBase,
		diag.TypeOptionNotDerived,
		diag.DuplicateTypeOptionName,
		diag.DuplicateTypeCollection,
		diag.UnresolvedTypeCollection,
	)
)

// Suite lists every analyzer.
var Suite = []*analysis.Analyzer{
	CollectionName,
	Inheritance,
	GenericConstraint,
	LookupValues,
	EnumCollections,
	TypeCollections,
}
