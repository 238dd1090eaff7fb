package main

import (
	"os"

	"github.com/pagelift/backend/cmd/pagelift/commands"
)

// main is the entry point for the pagelift CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
