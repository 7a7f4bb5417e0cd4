// Package main provides the entry point for the crmdex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/crmdex/cmd/crmdex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
