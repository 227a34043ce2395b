package main

import (
	"os"

	"github.com/lehmann314159/rango/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
