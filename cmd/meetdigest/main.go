package main

import (
	"fmt"
	"os"

	"github.com/nguyentantai21042004/meeting-digest/internal/cli"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
