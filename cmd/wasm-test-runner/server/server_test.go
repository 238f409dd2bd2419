package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

const testHarness = `<!DOCTYPE html>
<html>
<head><title>WASM Harness Test</title></head>
<body>
<div id="test-result"></div>
<pre id="output"></pre>
</body>
</html>`

// wasmMagic is the header of an empty WebAssembly module.
var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// writeFixtures creates a harness page, a WASM binary and a static dir.
func writeFixtures(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "harness.html")
	if err := os.WriteFile(htmlPath, []byte(testHarness), 0o644); err != nil {
		t.Fatalf("write harness: %v", err)
	}
	wasmPath := filepath.Join(dir, "hello_web_bin")
	if err := os.WriteFile(wasmPath, wasmMagic, 0o644); err != nil {
		t.Fatalf("write wasm: %v", err)
	}
	staticDir := filepath.Join(dir, "static")
	if err := os.MkdirAll(filepath.Join(staticDir, "lib"), 0o755); err != nil {
		t.Fatalf("mkdir static: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staticDir, "lib", "loader.js"), []byte("console.log('hi')"), 0o644); err != nil {
		t.Fatalf("write loader: %v", err)
	}

	cfg := DefaultConfig()
	cfg.HTMLPath = htmlPath
	cfg.WASMPath = wasmPath
	cfg.StaticDir = staticDir
	return cfg
}

func TestServerStartStop(t *testing.T) {
	// Create server with random port
	srv, err := NewServer(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}

	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// Verify we got a real address (not :0)
	if addr == "" || addr == ":0" {
		t.Errorf("Start() returned invalid address: %q", addr)
	}
	t.Logf("Server started on %s", addr)

	if got := srv.Addr(); got != addr {
		t.Errorf("Addr() = %q, want %q", got, addr)
	}
	if srv.Port() == 0 {
		t.Error("Port() = 0 while running")
	}

	url := "http://localhost:" + strconv.Itoa(srv.Port()) + "/"
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("HTTP GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET / status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "WASM Harness Test") {
		t.Error("Response body doesn't contain expected HTML")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	// Verify server is stopped (should fail to connect)
	_, err = http.Get(url)
	if err == nil {
		t.Error("Expected connection error after shutdown, but request succeeded")
	}
	if got := srv.Addr(); got != "" {
		t.Errorf("Addr() after shutdown = %q, want empty", got)
	}
}

func TestServerShutdownReleasesPort(t *testing.T) {
	srv, err := NewServer(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}

	// The same port must be immediately bindable again.
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("port still held after Shutdown: %v", err)
	}
	ln.Close()
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != ":0" {
		t.Errorf("DefaultConfig().Addr = %q, want %q", cfg.Addr, ":0")
	}
	if cfg.ReadTimeout != 30*time.Second {
		t.Errorf("DefaultConfig().ReadTimeout = %v, want %v", cfg.ReadTimeout, 30*time.Second)
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("DefaultConfig().WriteTimeout = %v, want %v", cfg.WriteTimeout, 30*time.Second)
	}
}

func TestNewServerRequiresPaths(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewServer(cfg); err == nil {
		t.Error("NewServer() without paths should fail")
	}
	cfg.HTMLPath = "harness.html"
	if _, err := NewServer(cfg); err == nil {
		t.Error("NewServer() without WASM path should fail")
	}
}

func TestServerDoubleStart(t *testing.T) {
	srv, err := NewServer(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	defer srv.Shutdown(context.Background())

	addr1, err := srv.Start()
	if err != nil {
		t.Fatalf("First Start() failed: %v", err)
	}

	// Second start should return same address (no error)
	addr2, err := srv.Start()
	if err != nil {
		t.Fatalf("Second Start() failed: %v", err)
	}

	if addr1 != addr2 {
		t.Errorf("Second Start() returned different address: %q vs %q", addr1, addr2)
	}
}

func TestServerShutdownNotStarted(t *testing.T) {
	srv, err := NewServer(writeFixtures(t))
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() on idle server = %v, want nil", err)
	}
}
