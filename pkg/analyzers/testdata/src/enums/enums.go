package enums

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
}

type Color interface {
	enumopt.Option
}

//enum:option name=Square id=1
type Square struct {
	enumopt.Base[Shape]
}

//enum:option name=Square id=2
type Block struct { // want `ENH002: option name "Square" in collection Shapes is also used by Square`
	enumopt.Base[Shape]
}

//enum:option
type Circle struct { // want `ENH013: option Circle has no zero-argument constructor`
	enumopt.Base[Shape]
}

func NewOval() *Circle { return &Circle{} }

//enum:option name=Red id=1
type Red struct { // want `ENH005: option Red has no collection for base type Color`
	enumopt.Base[Color]
}

//enum:option idx=3
type Broken struct { // want `ENH007: malformed directive .*unknown argument "idx"`
	enumopt.Base[Shape]
}

//enum:collection name=Shapes
type ShapeCollection struct {
	enumopt.CollectionBase[Shape]
}

// Collections shares its generated name with ShapeCollection.
//
//enum:collection name=Shapes
type Collections struct { // want `ENH001: collection name "Shapes" is already declared by ShapeCollection`
	enumopt.CollectionBase[Shape]
}
