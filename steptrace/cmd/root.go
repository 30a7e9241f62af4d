// Package cmd provides the command-line interface of steptrace.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/steptrace/config"
	"github.com/sarchlab/steptrace/logging"
)

var (
	configFile string
	dotEnvFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "steptrace",
	Short: "steptrace prints selected particle transport steps.",
	Long: `steptrace runs a small shower simulation and prints the steps of ` +
		`the selected events and tracks, the way a stepping verbose tracer ` +
		`does. Runs can be recorded and replayed later with other selections.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"YAML settings file.")
	rootCmd.PersistentFlags().StringVar(&dotEnvFile, "env-file", "",
		"File of STEPTRACE_* variables. Defaults to .env if present.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Registered exit handlers run before the process exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadSettings resolves the settings of a command, the flags of the command
// taking precedence.
func loadSettings(flags *config.Flags) (*config.Settings, error) {
	s, err := config.Load(config.Sources{File: configFile, DotEnv: dotEnvFile})
	if err != nil {
		return nil, err
	}

	flags.Apply(s)

	return s, nil
}

func newLogger(s *config.Settings) (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:       s.Log.Level,
		Development: s.Log.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}
