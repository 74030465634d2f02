// Package main is the entry point for the pbirag CLI binary.
package main

import (
	"os"

	cli "pbi-rag/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
