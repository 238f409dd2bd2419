// Chrome Installer
//
// Hermetically downloads the Chrome headless shell for the WASM browser tests:
//
//	chrome-installer <download-dir>
//
// The executable path is printed in the log; pass it to the runner via the
// browser path environment variable.
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

	if err := installer.NewCommand(installer.Chrome()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
