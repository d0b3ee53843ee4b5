// Mini Drive command-line client.
//
// Build with:
//
//	go build -ldflags "-X github.com/minidrive/minidrive/internal/version.Version=v0.3.0 \
//	  -X github.com/minidrive/minidrive/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/minidrive
package main

import (
	"os"

	"github.com/minidrive/minidrive/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// cobra has already printed the error
		os.Exit(1)
	}
}
