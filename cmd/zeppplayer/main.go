// Package main is the entry point for the ZeppPlayer launcher.
package main

import (
	"os"

	"github.com/zeppplayer/zeppplayer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
