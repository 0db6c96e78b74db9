package testutil

// PriorityPath is the import path of the Priority fixture.
const PriorityPath = "example.com/priority"

// Priority is a complete, valid enum collection: one option with a
// constructor, two identified by their directives, an abstract option and
// two lookups.
const Priority = `package priority

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Priority interface {
	enumopt.Option
	Level() int
	// Tag groups priorities.
	//
	//enum:lookup ByTag multi
	Tag() string
	//enum:lookup ByCode fold
	Code() string
}

//enum:option
type High struct {
	enumopt.Base[Priority]
}

func NewHigh() *High {
	return &High{Base: enumopt.NewBase[Priority](1, "High")}
}

func (*High) Level() int   { return 3 }
func (*High) Tag() string  { return "urgent" }
func (*High) Code() string { return "H" }

//enum:option name=Low id=2 category=calm
type Low struct {
	enumopt.Base[Priority]
}

func (*Low) Level() int   { return 1 }
func (*Low) Tag() string  { return "calm" }
func (*Low) Code() string { return "L" }

//enum:option name="Very Low" id=3 category=calm
type VeryLow struct {
	enumopt.Base[Priority]
}

func (*VeryLow) Level() int   { return 0 }
func (*VeryLow) Tag() string  { return "calm" }
func (*VeryLow) Code() string { return "VL" }

//enum:option abstract
type Pending struct {
	enumopt.Base[Priority]
}

//enum:collection name=Priorities
type PriorityCollection struct {
	enumopt.CollectionBase[Priority]
}
`

// Colors is a const-based enum extended into a collection.
const Colors = `package colors

//enum:extend
type Color int

const (
	Red Color = iota
	Green
	Blue
)

const Unrelated = 4
`
