package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sigmotion/harlearn/pkg/errors"
	"github.com/sigmotion/harlearn/pkg/log"
)

// envPrefix namespaces the environment variables viper reads, e.g.
// HARLEARN_TREES=50.
const envPrefix = "HARLEARN"

// Execute runs the harlearn command tree and reports the outcome.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harlearn",
		Short: "Activity recognition on the UCI HAR smartphone dataset",
		Long: `harlearn builds random forest classifiers for smartphone-based human
activity recognition. It loads the UCI HAR feature CSVs, audits them for
missing values, trains a forest pipeline on a train/test split and reports
per-class accuracy, and can apply a saved model to new data.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			name, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return err
			}
			level, err := parseLevel(name)
			if err != nil {
				return err
			}
			format, err := cmd.Flags().GetString("log-format")
			if err != nil {
				return err
			}
			provider, err := newLogProvider(format)
			if err != nil {
				return err
			}
			provider.SetLevel(level)
			log.SetLoggerProvider(provider)
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "log verbosity: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", "console", "log output format: console or json")

	cmd.AddCommand(newTrainCmd(), newInspectCmd(), newPredictCmd())
	return cmd
}

// parseLevel maps a --log-level flag value onto a log.Level.
func parseLevel(name string) (log.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, errors.NewValueError("log-level", fmt.Sprintf("unknown level %q", name))
	}
}

// newLogProvider maps a --log-format flag value onto a logging backend.
// Console rendering suits interactive runs; json emits one record per line
// for log collectors.
func newLogProvider(format string) (log.LoggerProvider, error) {
	switch strings.ToLower(format) {
	case "console":
		return log.NewConsoleProvider(os.Stderr), nil
	case "json":
		return log.NewSlogProvider(os.Stderr), nil
	default:
		return nil, errors.NewValueError("log-format", fmt.Sprintf("unknown format %q", format))
	}
}
