// Package runner serves a WebAssembly harness page from a local HTTP server,
// drives a headless browser against it and judges the result the page reports.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/thesyncim/wasmharness/cmd/wasm-test-runner/server"
	"github.com/thesyncim/wasmharness/pkg/browser"
)

// ErrMissingInput is returned when the harness page or the WASM binary does not exist.
var ErrMissingInput = errors.New("required input file not found")

const shutdownTimeout = 5 * time.Second

// Session is the slice of browser automation the runner needs.
// Close must be safe to call more than once.
type Session interface {
	Navigate(url string) error
	WaitVisible(selector string, timeout time.Duration) error
	HasClass(selector, class string) (bool, error)
	Text(selector string) (string, error)
	Close() error
}

// LaunchFunc starts a browser session.
type LaunchFunc func(cfg browser.Config) (Session, error)

// LaunchBrowser launches a real browser through Rod.
func LaunchBrowser(cfg browser.Config) (Session, error) {
	return browser.New(cfg)
}

// Runner executes one harness run.
type Runner struct {
	cfg    Config
	logger *zap.Logger
	launch LaunchFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithLauncher replaces the browser launcher.
func WithLauncher(launch LaunchFunc) Option {
	return func(r *Runner) {
		r.launch = launch
	}
}

// New creates a Runner for cfg.
func New(cfg Config, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		launch: LaunchBrowser,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs the whole test: check inputs, start the server, launch the
// browser, wait for the page to report, and judge the outcome. The browser
// and the server are released on every return path. A nil error means the
// page passed with the expected exit code.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("Using browser path", zap.String("path", r.cfg.BrowserPath))
	r.logger.Info("Using WASM binary path", zap.String("path", r.cfg.WASMPath))
	r.logger.Info("Using test HTML path", zap.String("path", r.cfg.HTMLPath))

	if err := browser.CheckExecutable(r.cfg.BrowserPath); err != nil {
		r.logger.Error("Unsupported browser", zap.String("path", r.cfg.BrowserPath), zap.Error(err))
		return err
	}
	if err := r.checkInputs(); err != nil {
		r.logger.Error("Missing input", zap.Error(err))
		return err
	}
	r.preflight()

	srv, err := server.NewServer(server.Config{
		Addr:         ":" + strconv.Itoa(r.cfg.Port),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		HTMLPath:     r.cfg.HTMLPath,
		WASMPath:     r.cfg.WASMPath,
		StaticDir:    r.cfg.StaticDir,
		Logger:       r.logger.Named("server"),
	})
	if err != nil {
		r.logger.Error("Test error", zap.Error(err))
		return err
	}
	if _, err := srv.Start(); err != nil {
		r.logger.Error("Test error", zap.Error(err))
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Error("Test server shutdown error", zap.Error(err))
		}
	}()

	url := fmt.Sprintf("http://localhost:%d/", srv.Port())
	outcome, err := r.execute(ctx, url)
	if err != nil {
		r.logger.Error("Test error", zap.Error(err))
		return err
	}

	if !outcome.Succeeded(r.cfg.ExpectedExitCode) {
		r.logger.Error("Test failed", zap.String("exit_code", outcome.ExitCodeString()), zap.Bool("pass", outcome.Passed))
		r.logger.Error("Output", zap.String("output", outcome.Output))
		return &OutcomeError{Outcome: outcome, Expected: r.cfg.ExpectedExitCode}
	}

	r.logger.Info("Test passed", zap.Int("exit_code", outcome.ExitCode))
	return nil
}

// execute owns the browser for the duration of one page visit.
func (r *Runner) execute(ctx context.Context, url string) (Outcome, error) {
	r.logger.Info("Launching browser", zap.Bool("headless", r.cfg.Headless))
	session, err := r.launch(browser.Config{
		BinPath:  r.cfg.BrowserPath,
		Headless: r.cfg.Headless,
		Timeout:  r.cfg.ResultTimeout,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("Browser close error", zap.Error(err))
		}
	}()
	r.logger.Info("Browser launched")

	// Closing the browser aborts whichever call is blocked on it.
	stop := context.AfterFunc(ctx, func() {
		_ = session.Close()
	})
	defer stop()

	if err := session.Navigate(url); err != nil {
		return Outcome{}, interrupted(ctx, err)
	}

	r.logger.Info("Waiting for test result element", zap.String("selector", ResultSelector))
	if err := session.WaitVisible(ResultSelector, r.cfg.ResultTimeout); err != nil {
		return Outcome{}, interrupted(ctx, err)
	}
	r.logger.Info("Test result element found")

	passed, err := session.HasClass(ResultSelector, PassClass)
	if err != nil {
		return Outcome{}, interrupted(ctx, err)
	}
	output, err := session.Text(OutputSelector)
	if err != nil {
		return Outcome{}, interrupted(ctx, err)
	}

	return NewOutcome(passed, output), nil
}

// interrupted prefers the cancellation cause over the browser error it provoked.
func interrupted(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("test interrupted: %w", ctxErr)
	}
	return err
}

func (r *Runner) checkInputs() error {
	if err := requireFile("Test HTML file", "TEST_HTML_PATH", r.cfg.HTMLPath); err != nil {
		return err
	}
	return requireFile("WASM binary", "WASM_BIN_PATH", r.cfg.WASMPath)
}

func requireFile(what, env, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s is not set", ErrMissingInput, env)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s not found at: %s", ErrMissingInput, what, path)
	}
	return nil
}

// preflight logs problems with the inputs that do not stop the run.
func (r *Runner) preflight() {
	mt, err := mimetype.DetectFile(r.cfg.WASMPath)
	switch {
	case err != nil:
		r.logger.Warn("Could not sniff WASM binary", zap.Error(err))
	case !mt.Is("application/wasm"):
		r.logger.Warn("WASM binary does not look like a WebAssembly module", zap.String("detected", mt.String()))
	}

	missing, err := server.MissingElements(r.cfg.HTMLPath, ResultSelector, OutputSelector)
	if err != nil {
		r.logger.Warn("Could not inspect harness page", zap.Error(err))
		return
	}
	for _, sel := range missing {
		r.logger.Warn("Harness page has no static element, expecting script to create it", zap.String("selector", sel))
	}
}
