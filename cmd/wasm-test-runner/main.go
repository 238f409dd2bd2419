// WASM Test Runner
//
// Serves a WebAssembly harness page over a local HTTP server, drives a headless
// browser against it and exits 0 only if the page reports a pass with the
// expected exit code. Configuration comes from the environment:
//
//	TEST_SERVER_PORT  port to serve on (default 8099)
//	FIREFOX_PATH      browser executable (default: first browser found on PATH)
//	WASM_BIN_PATH     WebAssembly binary under test
//	TEST_HTML_PATH    harness page
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thesyncim/wasmharness/pkg/logging"
	"github.com/thesyncim/wasmharness/pkg/runner"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code once every deferred cleanup has finished.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := runner.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(loggerConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	if err := runner.New(cfg, logger.Named("runner")).Run(ctx); err != nil {
		return 1
	}
	return 0
}

// loggerConfig picks the console or JSON preset and applies LOG_LEVEL.
func loggerConfig(cfg runner.Config) logging.Config {
	logCfg := logging.DefaultConfig()
	if cfg.LogDev {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.LogLevel
	return logCfg
}
