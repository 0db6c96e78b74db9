// Command collectionvet runs the collectiongen analyzers as a standalone vet
// tool:
//
//	go vet -vettool=$(which collectionvet) ./...
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/cmmoran/collectiongen/pkg/analyzers"
)

func main() {
	multichecker.Main(analyzers.Suite...)
}
