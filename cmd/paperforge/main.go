// Package main provides the entry point for the paperforge CLI.
package main

import (
	"os"

	"github.com/paperforge/paperforge-core/cmd/paperforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
