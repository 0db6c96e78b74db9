package colors

//enum:extend
type Color int

const (
	Red Color = iota
	Green
	Blue
)

const Unrelated = 4
