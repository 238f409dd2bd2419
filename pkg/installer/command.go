package installer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesyncim/wasmharness/pkg/logging"
)

// NewCommand returns the CLI for installing b: `<command> <download-dir>`.
// Options come from the environment (see Settings). Every failure is printed
// to stderr by the command itself, so callers only need to turn a non-nil
// error from Execute into exit status 1.
func NewCommand(b Browser) *cobra.Command {
	return &cobra.Command{
		Use:   b.Command + " <download-dir>",
		Short: fmt.Sprintf("Download %s into a cache directory for headless testing", b.Name),
		Long: fmt.Sprintf(`Download %s into a cache directory for headless testing.

Environment:
  INSTALL_TIMEOUT          maximum time the fetch command may run (default 90s)
  INSTALL_FETCH_COMMAND    command that runs the browser fetch tool (default npx)
  INSTALL_EXECUTABLE_PATH  executable path relative to the download directory
  LOG_LEVEL                debug, info, warn or error (default info)`, b.Name),
		Args:               exactlyOneArg,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := LoadSettings()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}

			logCfg := logging.DevelopmentConfig()
			logCfg.Level = settings.LogLevel
			logger, err := logging.New(logCfg)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "invalid LOG_LEVEL: %v\n", err)
				return err
			}
			defer logger.Sync() //nolint:errcheck

			opts := settings.apply(Options{Browser: b})
			opts.DownloadDir = args[0]
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()

			_, err = Install(cmd.Context(), opts, logger.Named("installer"))
			return err
		},
	}
}

func exactlyOneArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		err := fmt.Errorf("Expected exactly one command-line argument, got %d.", len(args)) //nolint:stylecheck
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return err
	}
	return nil
}
