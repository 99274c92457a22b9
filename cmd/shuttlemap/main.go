package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/babcock-shuttle/shuttlemap/internal/api"
	"github.com/babcock-shuttle/shuttlemap/internal/config"
	"github.com/babcock-shuttle/shuttlemap/internal/logging"
)

var (
	// Global flags
	configDir   string
	logLevel    string
	logFilePath string

	cfg     config.Config
	logger  = zerolog.Nop()
	logFile *os.File
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shuttlemap",
	Short: "Live map of the Babcock University shuttle fleet",
	Long: `shuttlemap animates one marker per campus shuttle between the campus
landmarks and keeps the marker set in sync with the fleet backend.

Settings come from shuttlemap.yml in the config directory and from
SHUTTLEMAP_* environment variables (for example SHUTTLEMAP_API_TOKEN).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configDir)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		var out io.Writer = os.Stderr
		if logFilePath != "" {
			logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			out = logFile
		}
		logger = logging.New(out, cfg.LogLevel, cfg.LogFormat)
		if f := config.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("config loaded")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing shuttlemap.yml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFilePath, "log-file", "", "Append logs to this file instead of stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(vehiclesCmd)
	rootCmd.AddCommand(routesCmd)
}

func newClient() *api.Client {
	return api.New(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)
}

// execute runs the command line and closes the log file afterwards; cobra
// skips post-run hooks when a command fails.
func execute() error {
	err := rootCmd.Execute()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	return err
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
