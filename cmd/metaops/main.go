package main

import (
	"os"

	"github.com/badno/metaops/cmd/metaops/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
