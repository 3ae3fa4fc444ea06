// Package main is the entry point of javadocgen, which adds generated doc
// comments to undocumented Java declarations.
package main

import "javadocgen/cmd"

func main() {
	cmd.Execute()
}
