package main

import (
	"os"

	"github.com/TFMV/notegraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
