// Package marker parses collectiongen directives.
//
// A directive is a line comment attached to a declaration:
//
//	//enum:option name=High id=1
//	//enum:collection name=Priorities returns=Ranked singleton=false
//	//enum:global name=AllPriorities
//	//enum:lookup GetByTag multi
//	//enum:extend name=Colors
//	//type:option Shapes name=Circle
//	//type:collection base=Shape name=Shapes
//	//type:lookup ByKind
//
// Arguments are positional tokens, key=value pairs or bare flags. Values
// containing spaces are double-quoted. Every directive is parsed once into
// one of the Marker variants below; nothing else in the module compares
// directive text.
package marker

import (
	"fmt"
	"go/ast"
	"go/token"
)

// Family separates the enhanced-enum directives from the type-collection
// directives. Both share one engine but keep their own diagnostic IDs.
type Family int

const (
	FamilyEnum Family = iota + 1
	FamilyType
)

func (f Family) String() string {
	switch f {
	case FamilyEnum:
		return "enum"
	case FamilyType:
		return "type"
	}
	return "unknown"
}

// Kind identifies a Marker variant.
type Kind int

const (
	KindInvalid Kind = iota
	KindEnumOption
	KindEnumCollection
	KindEnumLookup
	KindExtendEnum
	KindTypeOption
	KindTypeCollection
	KindTypeLookup
)

var kindNames = map[Kind]string{
	KindEnumOption:     "enum:option",
	KindEnumCollection: "enum:collection",
	KindEnumLookup:     "enum:lookup",
	KindExtendEnum:     "enum:extend",
	KindTypeOption:     "type:option",
	KindTypeCollection: "type:collection",
	KindTypeLookup:     "type:lookup",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Marker is one parsed directive.
type Marker interface {
	Kind() Kind
	Family() Family
	Source() *Directive
}

// Arg is one token of a directive. Positional tokens and bare flags have an
// empty Key.
type Arg struct {
	Key    string
	Value  string
	Offset int // byte offset of the token within the comment text
	End    int // byte offset just past the token
}

// Directive is the raw form of a parsed directive comment.
type Directive struct {
	Comment *ast.Comment
	Prefix  string // "enum" or "type"
	Verb    string // "option", "collection", ...
	Args    []Arg
}

// Source returns d. It lets every variant expose its raw directive.
func (d *Directive) Source() *Directive { return d }

// Arg returns the argument given as key=value or as the bare flag key.
func (d *Directive) Arg(key string) (Arg, bool) {
	for _, a := range d.Args {
		if a.Key == key || (a.Key == "" && a.Value == key) {
			return a, true
		}
	}
	return Arg{}, false
}

// Pos returns the start of the directive comment.
func (d *Directive) Pos() token.Pos {
	if d == nil || d.Comment == nil {
		return token.NoPos
	}
	return d.Comment.Slash
}

// End returns the position just after the directive comment.
func (d *Directive) End() token.Pos {
	if d == nil || d.Comment == nil {
		return token.NoPos
	}
	return d.Comment.End()
}

// Text returns the directive comment text, including the leading slashes.
func (d *Directive) Text() string {
	if d == nil || d.Comment == nil {
		return ""
	}
	return d.Comment.Text
}

// EnumOption is //enum:option.
type EnumOption struct {
	*Directive
	Name     string
	ID       int
	HasID    bool
	Category string
	Abstract bool
}

func (*EnumOption) Kind() Kind     { return KindEnumOption }
func (*EnumOption) Family() Family { return FamilyEnum }

// EnumCollection is //enum:collection, or //enum:global when Global is set.
type EnumCollection struct {
	*Directive
	Name      string
	Returns   string
	Singleton bool
	Generic   bool
	Global    bool
}

func (*EnumCollection) Kind() Kind     { return KindEnumCollection }
func (*EnumCollection) Family() Family { return FamilyEnum }

// EnumLookup is //enum:lookup.
type EnumLookup struct {
	*Directive
	Method  string
	Multi   bool
	Returns string
	Fold    bool
}

func (*EnumLookup) Kind() Kind     { return KindEnumLookup }
func (*EnumLookup) Family() Family { return FamilyEnum }

// ExtendEnum is //enum:extend.
type ExtendEnum struct {
	*Directive
	Name string
}

func (*ExtendEnum) Kind() Kind     { return KindExtendEnum }
func (*ExtendEnum) Family() Family { return FamilyEnum }

// TypeOption is //type:option.
type TypeOption struct {
	*Directive
	Collection string
	Name       string
	Category   string
	Abstract   bool
}

func (*TypeOption) Kind() Kind     { return KindTypeOption }
func (*TypeOption) Family() Family { return FamilyType }

// TypeCollection is //type:collection.
type TypeCollection struct {
	*Directive
	Base    string
	Returns string
	Name    string
}

func (*TypeCollection) Kind() Kind     { return KindTypeCollection }
func (*TypeCollection) Family() Family { return FamilyType }

// TypeLookup is //type:lookup.
type TypeLookup struct {
	*Directive
	Method string
	Multi  bool
	Fold   bool
}

func (*TypeLookup) Kind() Kind     { return KindTypeLookup }
func (*TypeLookup) Family() Family { return FamilyType }

// Error reports a malformed directive.
type Error struct {
	Comment *ast.Comment
	Msg     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("malformed directive %q: %s", e.Comment.Text, e.Msg)
}

// Pos returns the position of the offending comment.
func (e *Error) Pos() token.Pos { return e.Comment.Slash }

// End returns the end of the offending comment.
func (e *Error) End() token.Pos { return e.Comment.End() }
