package main

import (
	"os"

	"github.com/glossa-labs/glossa-cli/internal/adapters/driving/cli"
)

// version is injected at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
