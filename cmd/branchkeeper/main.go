package main

import (
	"os"

	"github.com/flowbuilder/branchkeeper/cmd/branchkeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
