// Package main is the entry point for the formcoord CLI.
package main

import (
	"os"

	"github.com/goliatone/go-formcoord/cmd/formcoord/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
