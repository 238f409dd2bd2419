package installer

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings are the installer knobs read from the environment. The command
// line carries only the download directory, so any single argument, even one
// starting with a dash, is taken as that directory.
type Settings struct {
	Timeout        time.Duration `envconfig:"INSTALL_TIMEOUT" default:"90s"`
	FetchCommand   string        `envconfig:"INSTALL_FETCH_COMMAND" default:"npx"`
	ExecutablePath string        `envconfig:"INSTALL_EXECUTABLE_PATH"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to load installer settings: %w", err)
	}
	if s.Timeout <= 0 {
		return Settings{}, fmt.Errorf("INSTALL_TIMEOUT must be positive, got %s", s.Timeout)
	}
	return s, nil
}

// apply overlays s onto opts; an empty executable path keeps the browser default.
func (s Settings) apply(opts Options) Options {
	opts.Timeout = s.Timeout
	opts.FetchCommand = s.FetchCommand
	if s.ExecutablePath != "" {
		opts.Browser.ExecutablePath = s.ExecutablePath
	}
	return opts
}
