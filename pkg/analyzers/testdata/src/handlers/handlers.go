package handlers

import "github.com/cmmoran/collectiongen/pkg/enumopt"

type Handler interface {
	enumopt.Option
	//type:lookup ByKind
	Kind() string
}

//type:collection base=Handler
type HandlerSet struct{}

//type:collection base=Missing
type BrokenSet struct{} // want `TC001: type collection BrokenSet must specify a resolvable base type: "Missing" not found`

//type:option Handlers name=json
type JSON struct {
	enumopt.Base[Handler]
}

func (*JSON) Kind() string { return "json" }

//type:option HandlerSet name=xml
type XML struct {
	enumopt.Base[Handler]
}

func (*XML) Kind() string { return "xml" }

//type:option Handlers name=json
type Duplicate struct { // want `TC003: type option name "json" in collection Handlers is also used by JSON`
	enumopt.Base[Handler]
}

func (*Duplicate) Kind() string { return "dup" }

//type:option Handlers
type Plain struct{} // want `TC002: type option Plain must embed or implement Handler`

//type:option Nowhere
type YAML struct { // want `TC005: type option YAML references unknown collection "Nowhere"`
	enumopt.Base[Handler]
}

//type:collection base=Handler name=Handlers
type Shadow struct{} // want `TC004: type collection name "Handlers" is already declared by HandlerSet`
