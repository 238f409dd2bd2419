// Package server provides the importable static HTTP server behind the WASM test runner.
// It serves the test harness page, the WASM binary under test and any other static file
// the harness references, so tests can start/stop it without running main().
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config holds server configuration options.
type Config struct {
	Addr         string        // Listen address (e.g., ":8099" or ":0" for random port)
	ReadTimeout  time.Duration // HTTP read timeout
	WriteTimeout time.Duration // HTTP write timeout

	HTMLPath  string      // Harness page served at "/"
	WASMPath  string      // Binary served at the WASM routes
	StaticDir string      // Root for every other request path
	Logger    *zap.Logger // Defaults to a no-op logger
}

// DefaultConfig returns a configuration suitable for testing.
// Uses ":0" to bind to a random available port.
func DefaultConfig() Config {
	return Config{
		Addr:         ":0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is an importable HTTP server for browser-driven WASM tests.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	listener   net.Listener
	addr       string
	done       chan struct{}
	mu         sync.Mutex
	running    bool
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.HTMLPath == "" {
		return nil, errors.New("harness HTML path is required")
	}
	if cfg.WASMPath == "" {
		return nil, errors.New("WASM binary path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewHandler(cfg.HTMLPath, cfg.WASMPath, cfg.StaticDir, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.addr, nil
	}

	// Create listener to get actual port
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.done = make(chan struct{})
	s.running = true

	go func(done chan struct{}) {
		defer close(done)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Test server stopped unexpectedly", zap.Error(err))
		}
	}(s.done)

	s.logger.Info("Test server running", zap.String("addr", s.addr))
	return s.addr, nil
}

// Shutdown gracefully shuts down the server. It returns once the serve loop
// has exited and the listening port is released.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		// Graceful drain did not finish in time; drop the remaining connections.
		_ = s.httpServer.Close()
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	s.logger.Info("Test server stopped")
	return err
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ""
	}
	return s.addr
}

// Port returns the TCP port the server is listening on, or 0 if it is not running.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
