package enumopt

type Option interface {
	ID() int
	Name() string
}

type Base[T any] struct {
	id   int
	name string
}

func NewBase[T any](id int, name string) Base[T] { return Base[T]{id: id, name: name} }

func (b Base[T]) ID() int      { return b.id }
func (b Base[T]) Name() string { return b.name }

type CollectionBase[T any] struct{}
