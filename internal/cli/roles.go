package cli

import (
	"resumescore/internal/ats"
	"resumescore/internal/common"
	"resumescore/internal/formatters"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List available target roles for keyword matching",
	Long: `List the target roles the scoring engine knows keyword sets for.
Pass one of these to the score command with --role. Unknown roles fall
back to the general keyword set.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if rolesConfig.OutputFormat == "" {
			rolesConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(rolesConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRoles,
}

var rolesConfig common.CommandConfig

func init() {
	rolesCmd.Flags().StringVarP(&rolesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	rolesCmd.Flags().StringVar(&rolesConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runRoles(cmd *cobra.Command, args []string) error {
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(formatters.RoleList{Roles: ats.Roles()}, rolesConfig)
}
