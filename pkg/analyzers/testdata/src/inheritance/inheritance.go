package inheritance

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
}

//enum:collection name=Shapes
type ShapeCollection struct{} // want `ENH009: ShapeCollection must embed enumopt\.CollectionBase\[T\]`

//enum:collection name=Figures
type FigureCollection struct {
	enumopt.CollectionBase[Shape]
}
