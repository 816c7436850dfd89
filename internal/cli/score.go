package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"resumescore/internal/ats"
	"resumescore/internal/common"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file]",
	Short: "Score a resume for ATS compatibility",
	Long: `Score a structured resume (JSON) for ATS compatibility.

The engine runs weighted rule checks over the resume, matches keywords
for the target role, and reports:
- An overall score from 0 to 100 with a strength level
- Per-rule pass/fail results with feedback
- Up to four prioritized improvement suggestions
- Matched and missing role keywords

Use the roles command to list available target roles.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if scoreConfig.OutputFormat == "" {
			scoreConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(scoreConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runScore,
}

var (
	scoreConfig common.CommandConfig
	scoreRole   string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().StringVar(&scoreConfig.OutputFormat, "format", "", "Output format: json, text, markdown, or badge")
	scoreCmd.Flags().StringVarP(&scoreRole, "role", "r", "", "Target role for keyword matching (default from config)")

	// Add completion for format flag
	_ = scoreCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})

	// Add completion for role flag
	_ = scoreCmd.RegisterFlagCompletionFunc("role", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return ats.Roles(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	targetRole := scoreRole
	if targetRole == "" {
		targetRole = cfg.Engine.DefaultRole
	}

	createInput := func(contents []string) (*types.Resume, error) {
		if len(contents) != 1 {
			return nil, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		var resume types.Resume
		if err := json.Unmarshal([]byte(contents[0]), &resume); err != nil {
			return nil, fmt.Errorf("failed to parse resume JSON: %w", err)
		}
		return &resume, nil
	}

	logDetails := func(input *types.Resume, cfg common.CommandConfig) {
		logger.Info("Starting resume scoring",
			"target_role", targetRole,
			"experience_entries", len(input.Experience),
			"output_format", cfg.OutputFormat)
	}

	scoreOperation := func(ctx context.Context, input *types.Resume) (types.AnalysisResult, error) {
		return ats.Analyze(input, targetRole), nil
	}

	err = common.RunFileCommand(
		cmd.Context(),
		logger,
		scoreConfig,
		args,
		createInput,
		scoreOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}
	logger.Info("Resume scoring completed successfully")
	return nil
}
