package invalid

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
	//enum:lookup BySides
	Sides() int
}

//enum:option name=Square id=1
type Square struct {
	enumopt.Base[Shape]
}

func (*Square) Sides() int { return 4 }

//enum:option name=Rhombus id=2
type Rhombus struct {
	enumopt.Base[Shape]
}

func (*Rhombus) Sides() int { return 4 }

//enum:option name=Triangle id=3
type Triangle struct {
	enumopt.Base[Shape]
}

func (*Triangle) Sides() int { return 3 }

//enum:collection
type ShapeCollection struct {
	enumopt.CollectionBase[Shape]
}

//enum:collection name=Orphans
type Unrooted struct{}
