package lookups

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
	//enum:lookup BySides
	Sides() int
	//enum:lookup ByCorners returns=Shape
	Corners() int
	//enum:lookup ByCode multi=false
	Code() string
}

//enum:option name=Square id=1
type Square struct {
	enumopt.Base[Shape]
}

func (*Square) Sides() int   { return 4 }
func (*Square) Corners() int { return 4 }
func (*Square) Code() string { return "Q" }

//enum:option name=Rhombus id=2
type Rhombus struct { // want `ENH006: lookup BySides value 4 is produced by both Square and Rhombus; mark the lookup multi` `ENH006: lookup ByCorners value 4 is produced by both Square and Rhombus` `ENH006: lookup ByCode value "Q" is produced by both Square and Rhombus`
	enumopt.Base[Shape]
}

func (*Rhombus) Sides() int   { return 4 }
func (*Rhombus) Corners() int { return 4 }
func (*Rhombus) Code() string { return "Q" }

//enum:option name=Triangle id=3
type Triangle struct {
	enumopt.Base[Shape]
}

func (*Triangle) Sides() int   { return 3 }
func (*Triangle) Corners() int { return 3 }
func (*Triangle) Code() string { return "T" }

//enum:collection name=Shapes
type ShapeCollection struct {
	enumopt.CollectionBase[Shape]
}
