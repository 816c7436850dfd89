package cli

import (
	"context"
	"fmt"

	"resumescore/internal/config"
	"resumescore/internal/errors"

	"github.com/spf13/cobra"
)

// Context keys for the config and logger handed to subcommands.
type (
	configKeyType struct{}
	loggerKeyType struct{}
)

var (
	configKey = configKeyType{}
	loggerKey = loggerKeyType{}
)

var rootCmd = &cobra.Command{
	Use:   "resumescore",
	Short: "A CLI tool for scoring resumes against ATS rules",
	Long: `Resumescore is a command-line tool that scores resumes for ATS
(Applicant Tracking System) compatibility. It runs a set of weighted
rule checks over a structured resume, matches keywords for a target
role, and produces actionable suggestions for improvement.`,
}

// Execute stores cfg and logger on the command context and runs the
// root command. Subcommands retrieve them with the getter helpers.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil, fmt.Errorf("config not found in context")
	}
	return cfg, nil
}

func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	logger, ok := ctx.Value(loggerKey).(*errors.Logger)
	if !ok {
		return nil, fmt.Errorf("logger not found in context")
	}
	return logger, nil
}

func init() {
	rootCmd.AddCommand(scoreCmd, rolesCmd, sampleCmd, versionCmd, serveCmd)
}
