package main

import "github.com/cmmoran/collectiongen/cmd"

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
