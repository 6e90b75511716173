// Package main is the entry point for the boardpulse CLI.
package main

import (
	"os"

	"github.com/boardpulse/boardpulse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
