package names

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
}

//enum:option name=Square id=1
type Square struct {
	enumopt.Base[Shape]
}

//enum:collection
type ShapeCollection struct { // want `ENH008: collection ShapeCollection must specify a name`
	enumopt.CollectionBase[Shape]
}
