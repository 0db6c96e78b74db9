package validate

import (
	"go/token"
	"go/types"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/model"
)

// AddNameFix appends name=<default> to the collection directive of t.
func AddNameFix(t *model.CollectionTarget) diag.Fix {
	name := DefaultCollectionName(t)
	end := t.Directive.Source().End()
	return diag.Fix{
		Title: "Add name=" + name,
		Edits: []diag.TextEdit{{Pos: end, End: end, NewText: " name=" + name}},
	}
}

// AddMultiFix marks the lookup directive of k as multi. An existing multi
// argument, such as multi=false, is replaced in place.
func AddMultiFix(k *model.LookupKey) diag.Fix {
	d := k.Directive.Source()
	edit := diag.TextEdit{Pos: d.End(), End: d.End(), NewText: " multi"}
	if a, ok := d.Arg("multi"); ok {
		edit = diag.TextEdit{
			Pos:     d.Pos() + token.Pos(a.Offset),
			End:     d.Pos() + token.Pos(a.End),
			NewText: "multi",
		}
	}
	return diag.Fix{
		Title: "Mark lookup " + k.Accessor + " multi",
		Edits: []diag.TextEdit{edit},
	}
}

// DefaultCollectionName is the plural of the element type name, or of the
// target type name without its Collection/Base suffixes.
func DefaultCollectionName(t *model.CollectionTarget) string {
	if t.Element != nil {
		if named, ok := types.Unalias(t.Element).(*types.Named); ok {
			return inflection.Plural(named.Obj().Name())
		}
	}
	name := t.Obj.Name()
	for _, suffix := range []string{"Base", "Collection"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != "" {
			name = trimmed
		}
	}
	return inflection.Plural(name)
}
