package analyzers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/cmmoran/collectiongen/internal/diag"
)

func TestCollectionName(t *testing.T) {
	analysistest.RunWithSuggestedFixes(t, analysistest.TestData(), CollectionName, "names")
}

func TestLookupValues(t *testing.T) {
	analysistest.RunWithSuggestedFixes(t, analysistest.TestData(), LookupValues, "lookups")
}

func TestInheritance(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Inheritance, "inheritance")
}

func TestGenericConstraint(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), GenericConstraint, "generic")
}

func TestEnumCollections(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), EnumCollections, "enums")
}

func TestTypeCollections(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), TypeCollections, "handlers")
}

func TestSuite(t *testing.T) {
	assert.NoError(t, analysis.Validate(Suite))

	for _, d := range diag.All() {
		a := Owner(d.ID)
		if assert.NotNil(t, a, "no analyzer reports %s", d.ID) {
			assert.Contains(t, Suite, a)
		}
	}
	assert.Same(t, LookupValues, Owner(diag.DuplicateLookupValue))
	assert.Nil(t, Owner("XYZ999"))
}

func TestConvert(t *testing.T) {
	d := diag.Diagnostic{ID: diag.MissingCollectionName, Message: "collection X must specify a name", Pos: 10, End: 12}
	d = d.WithFix(diag.Fix{Title: "Add name=Xs", Edits: []diag.TextEdit{{Pos: 20, End: 20, NewText: " name=Xs"}}})

	got := convert(d)
	assert.Equal(t, "ENH008", got.Category)
	assert.Equal(t, "ENH008: collection X must specify a name", got.Message)
	assert.Equal(t, []analysis.SuggestedFix{{
		Message:   "Add name=Xs",
		TextEdits: []analysis.TextEdit{{Pos: 20, End: 20, NewText: []byte(" name=Xs")}},
	}}, got.SuggestedFixes)
}
