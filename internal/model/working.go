package model

import (
	"go/types"
)

// Plan is the validated, emit-ready view of a Registry. Excluded targets and
// options are absent; everything in a Plan can be rendered.
type Plan struct {
	Pkg     *types.Package
	Targets []*PlannedTarget
	Extends []*ExtendTarget
}

// Empty reports whether the plan renders nothing.
func (p *Plan) Empty() bool {
	return p == nil || (len(p.Targets) == 0 && len(p.Extends) == 0)
}

// PlannedTarget is a valid collection target and its surviving options.
type PlannedTarget struct {
	Target *CollectionTarget

	// Concrete options are instantiated, in discovery order.
	Concrete []*PlannedOption
	// Descriptors lists every option including abstract ones.
	Descriptors []*OptionInfo
	Lookups     []*LookupKey
	// Unindexed holds, per single-valued lookup, the options whose key an
	// earlier option already produced. They are left out of that lookup.
	Unindexed map[*LookupKey]map[*OptionInfo]bool
}

// PlannedOption is a concrete option with its accessor name resolved.
type PlannedOption struct {
	*OptionInfo

	// Accessor is the generated method name, "" when a later option with
	// the same name shadows this one.
	Accessor string
}

// HasCategories reports whether any concrete option declares a category.
func (t *PlannedTarget) HasCategories() bool {
	for _, o := range t.Concrete {
		if o.Category != "" {
			return true
		}
	}
	return false
}

// Status records whether validation kept an option.
type Status int

const (
	Kept Status = iota
	Excluded
)

// Result is the per-option outcome of validation in one target.
type Result struct {
	Option *OptionInfo
	Status Status
}
