// Package main provides the gntaxon CLI application.
// gntaxon resolves raw taxon names and ids to canonical taxa.
package main

import "github.com/gnames/gntaxon/cmd"

func main() {
	cmd.Execute()
}
