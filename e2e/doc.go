//go:build e2e

// Package e2e provides end-to-end tests for the WASM test runner.
//
// These tests are isolated from the standard test suite via build tags.
// They require a Chromium-family browser on PATH (or BROWSER_PATH) and are
// intended for CI pipelines or explicit local testing.
//
// Running E2E tests:
//
//	go test -tags=e2e ./e2e/...
//
// Running all tests except E2E:
//
//	go test ./...
//
// E2E tests use:
//   - Rod for browser automation (Chrome DevTools Protocol)
//   - the wasm-test-runner server for the harness page and WASM binary
//   - pkg/runner for the full check-serve-launch-judge flow
//
// Test isolation:
// Each test starts its own server on a random port and launches
// its own browser instance.
package e2e
