// Package main provides the devarray CLI: environment and device
// inspection plus a small benchmark exercising the buffer pool.
package main

import (
	"log/slog"
	"os"

	"github.com/born-ml/devarray/internal/envconfig"
	"github.com/born-ml/devarray/internal/logutil"
)

const version = "v0.1.0-dev"

func main() {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
