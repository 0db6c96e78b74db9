package generic

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Shape interface {
	enumopt.Option
}

//enum:collection name=Bags generic
type Bag[T any] struct { // want `ENH010: generic collection Bag must constrain its type parameter T with a non-generic interface`
	enumopt.CollectionBase[T]
}

//enum:collection name=Boxes generic
type Box[T Shape] struct {
	enumopt.CollectionBase[T]
}
