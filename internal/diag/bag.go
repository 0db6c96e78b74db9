package diag

import (
	"fmt"
	"go/token"
	"sort"
)

// Bag accumulates diagnostics of one pass.
type Bag struct {
	items []Diagnostic
}

// Add appends diagnostics.
func (b *Bag) Add(ds ...Diagnostic) {
	b.items = append(b.items, ds...)
}

// Len returns the number of diagnostics.
func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the diagnostics. Do not modify the returned slice.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with severity s.
func (b *Bag) Count(s Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == s {
			n++
		}
	}
	return n
}

// Filter returns the diagnostics whose ID is in ids.
func (b *Bag) Filter(ids ...ID) []Diagnostic {
	want := make(map[ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Diagnostic
	for _, d := range b.items {
		if want[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders diagnostics by file, offset, severity (desc) and ID so that
// output is stable across runs.
func (b *Bag) Sort(fset *token.FileSet) {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		pi, pj := di.Position(fset), dj.Position(fset)
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		if pi.Offset != pj.Offset {
			return pi.Offset < pj.Offset
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.ID < dj.ID
	})
}

// Dedup drops diagnostics repeating the same ID, position and message.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%d:%d:%s", d.ID, d.Pos, d.End, d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}

func sortDescriptors(ds []Descriptor) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].ID < ds[j].ID })
}
