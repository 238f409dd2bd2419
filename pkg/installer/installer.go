// Package installer downloads a browser binary into a cache directory through an
// external fetch tool and verifies the resulting executable.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single run of the fetch command.
	DefaultTimeout = 90 * time.Second

	// DefaultFetchCommand runs the fetch tool's CLI.
	DefaultFetchCommand = "npx"
)

// ErrExecutableNotFound is returned when the fetch command succeeded but the
// browser executable is not at its expected path.
var ErrExecutableNotFound = errors.New("executable not found at expected path")

// Options configures one installation.
type Options struct {
	Browser      Browser
	DownloadDir  string        // Cache root; resolved to an absolute path
	FetchCommand string        // Defaults to DefaultFetchCommand
	Timeout      time.Duration // Defaults to DefaultTimeout
	Stdout       io.Writer     // Child stdout (default: os.Stdout)
	Stderr       io.Writer     // Child stderr (default: os.Stderr)
	Env          []string      // Base child environment (default: os.Environ())
}

// Install fetches the browser into opts.DownloadDir, verifies the executable
// and makes it executable. It returns the absolute executable path.
func Install(ctx context.Context, opts Options, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = withDefaults(opts)

	downloadDir, err := filepath.Abs(opts.DownloadDir)
	if err != nil {
		logger.Error("Error resolving download directory", zap.String("dir", opts.DownloadDir), zap.Error(err))
		return "", fmt.Errorf("failed to resolve download directory: %w", err)
	}
	name := opts.Browser.Name

	logger.Info("Downloading browser", zap.String("browser", name), zap.String("dir", downloadDir))

	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		logger.Error("Error creating download directory", zap.String("dir", downloadDir), zap.Error(err))
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	if err := fetch(ctx, opts, downloadDir); err != nil {
		logger.Error("Error installing browser", zap.String("browser", name), zap.Error(err))
		return "", fmt.Errorf("error installing %s: %w", name, err)
	}

	expected := filepath.Join(downloadDir, opts.Browser.ExecutablePath)
	logger.Info("Expected executable path", zap.String("browser", name), zap.String("path", expected))

	info, err := os.Stat(expected)
	if err != nil || info.IsDir() {
		logger.Error("Executable not found at expected path", zap.String("browser", name), zap.String("path", expected))
		return "", fmt.Errorf("%s: %w: %s", name, ErrExecutableNotFound, expected)
	}

	if err := os.Chmod(expected, 0o755); err != nil {
		logger.Error("Error installing browser", zap.String("browser", name), zap.Error(err))
		return "", fmt.Errorf("failed to make %s executable: %w", expected, err)
	}

	logger.Info("Executable found", zap.String("browser", name), zap.String("path", expected))
	return expected, nil
}

func withDefaults(opts Options) Options {
	if opts.FetchCommand == "" {
		opts.FetchCommand = DefaultFetchCommand
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	return opts
}

// fetch runs the fetch command once, bounded by opts.Timeout.
func fetch(ctx context.Context, opts Options, downloadDir string) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, opts.FetchCommand, opts.Browser.FetchArgs...)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.Env = append(append([]string{}, opts.Env...), CacheDirEnv+"="+downloadDir)
	// Grandchildren of npx can hold the output pipes open after a kill.
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("fetch command timed out after %s: %w", opts.Timeout, context.DeadlineExceeded)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("fetch command exited with status %d: %w", exitErr.ExitCode(), err)
	}
	return fmt.Errorf("failed to run fetch command: %w", err)
}
