package main

import (
	"os"

	"github.com/solatis/dosecalc/cmd/dosecalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
