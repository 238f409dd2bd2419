// Firefox Installer
//
// Hermetically downloads Firefox for the WASM browser tests:
//
//	firefox-installer <download-dir>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/thesyncim/wasmharness/pkg/installer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := installer.NewCommand(installer.Firefox()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
