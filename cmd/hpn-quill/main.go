// Package main is the entry point for the hpn-quill CLI and server.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
