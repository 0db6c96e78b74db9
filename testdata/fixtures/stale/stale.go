package stale

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Level interface {
	enumopt.Option
}

//enum:option name=Debug id=1
type Debug struct {
	enumopt.Base[Level]
}

//enum:collection name=Levels
type LevelCollection struct {
	enumopt.CollectionBase[Level]
}
