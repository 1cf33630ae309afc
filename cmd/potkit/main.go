package main

import (
	"os"

	"github.com/mlp-tools/potkit"
)

func main() {
	os.Exit(potkit.RunCLI(os.Stdout, os.Stderr, os.Args[1:]))
}
