package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runner configuration, read once from the environment.
type Config struct {
	Port             int           `envconfig:"TEST_SERVER_PORT" default:"8099"`
	BrowserPath      string        `envconfig:"FIREFOX_PATH"`
	WASMPath         string        `envconfig:"WASM_BIN_PATH"`
	HTMLPath         string        `envconfig:"TEST_HTML_PATH"`
	StaticDir        string        `envconfig:"TEST_STATIC_DIR"`
	ResultTimeout    time.Duration `envconfig:"TEST_RESULT_TIMEOUT" default:"60s"`
	ExpectedExitCode int           `envconfig:"TEST_EXPECTED_EXIT_CODE" default:"101"`
	Headless         bool          `envconfig:"TEST_HEADLESS" default:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogDev   bool   `envconfig:"LOG_DEV" default:"true"`
}

// LoadConfig reads Config from the environment and validates it.
// An unset static directory defaults to the directory of the running executable.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.StaticDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return Config{}, fmt.Errorf("failed to locate executable: %w", err)
		}
		cfg.StaticDir = filepath.Dir(exe)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that have no file-system meaning. Input files
// are checked by Run, so a missing file is reported as a precondition failure.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid TEST_SERVER_PORT %d", c.Port)
	}
	if c.ResultTimeout <= 0 {
		return errors.New("TEST_RESULT_TIMEOUT must be positive")
	}
	return nil
}
