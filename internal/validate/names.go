package validate

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cmmoran/collectiongen/internal/model"
)

// reservedMethods are the methods every generated collection declares.
var reservedMethods = map[string]bool{
	"All":          true,
	"Count":        true,
	"Any":          true,
	"GetByID":      true,
	"GetByName":    true,
	"TryGetByID":   true,
	"TryGetByName": true,
	"Descriptors":  true,
	"ByCategory":   true,
	"NameOf":       true,
}

// AccessorName turns a display name into an exported Go identifier:
// "very high" becomes "VeryHigh". Names that do not start with a letter get
// an "Option" prefix.
func AccessorName(display string) string {
	words := strings.FieldsFunc(display, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}
	name := b.String()
	if name == "" {
		return "Option"
	}
	if r := []rune(name)[0]; !unicode.IsUpper(r) {
		name = "Option" + name
	}
	return name
}

// assignAccessors resolves the accessor of every concrete option. When two
// options share a display name the later one owns the accessor. Names that
// would collide with generated or promoted methods get an "Option" suffix;
// remaining collisions are numbered.
func assignAccessors(t *model.CollectionTarget, opts []*model.OptionInfo, lookups []*model.LookupKey) []*model.PlannedOption {
	used := promotedMethods(t)
	for name := range reservedMethods {
		used[name] = true
	}
	for _, k := range lookups {
		used[k.Accessor] = true
	}
	last := make(map[string]int, len(opts))
	for i, o := range opts {
		last[o.Name] = i
	}

	out := make([]*model.PlannedOption, len(opts))
	taken := make(map[string]bool)
	for i, o := range opts {
		out[i] = &model.PlannedOption{OptionInfo: o}
		if last[o.Name] != i {
			continue
		}
		name := AccessorName(o.Name)
		if used[name] {
			name += "Option"
		}
		base := name
		for n := 2; used[name] || taken[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		taken[name] = true
		out[i].Accessor = name
	}
	return out
}
