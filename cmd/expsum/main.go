package main

import (
	"fmt"
	"os"
)

// set via ldflags at build time
var version = "v0.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
