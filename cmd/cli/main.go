// Package main is the entry point for the labintel CLI binary.
package main

import (
	"os"

	cli "labintel/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
