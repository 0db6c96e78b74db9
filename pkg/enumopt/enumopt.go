// Package enumopt is the runtime half of collectiongen.
//
// Option types embed Base[T], where T is the interface the collection hands
// out, and collection targets embed CollectionBase[T]:
//
//	type Priority interface {
//		enumopt.Option
//		Level() int
//	}
//
//	//enum:option name=High
//	type HighPriority struct {
//		enumopt.Base[Priority]
//	}
//
//	func NewHighPriority() *HighPriority {
//		return &HighPriority{Base: enumopt.NewBase[Priority](1, "High")}
//	}
//
//	//enum:collection name=Priorities
//	type PriorityCollectionBase struct {
//		enumopt.CollectionBase[Priority]
//	}
//
// The generator then emits a Priorities variable with High(), All(),
// GetByID, GetByName and the TryGet variants.
package enumopt

// Option is the identity every enhanced enum option exposes.
type Option interface {
	ID() int
	Name() string
}

// Base carries the identity of an option belonging to collections of T.
type Base[T any] struct {
	id   int
	name string
}

// NewBase returns the identity for an option. The generator reads constant
// arguments of this call to learn the option's id and name.
func NewBase[T any](id int, name string) Base[T] {
	return Base[T]{id: id, name: name}
}

// ID returns the numeric identifier of the option.
func (b Base[T]) ID() int {
	return b.id
}

// Name returns the display name of the option.
func (b Base[T]) Name() string {
	return b.name
}

func (b Base[T]) String() string {
	return b.name
}

// CollectionBase marks a collection target whose options are of type T.
type CollectionBase[T any] struct{}

// Descriptor describes one discovered option, including abstract options
// that are never instantiated.
type Descriptor struct {
	Type     string
	Name     string
	ID       int
	HasID    bool
	Category string
	Abstract bool
}
