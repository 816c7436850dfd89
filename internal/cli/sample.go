package cli

import (
	"resumescore/internal/common"
	"resumescore/internal/types"

	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample resume in the expected JSON format",
	Long: `Print a complete sample resume in the JSON format the score command
expects. Useful as a starting template or for trying out the engine:

  resumescore sample -o resume.json
  resumescore score resume.json --role software-engineer`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

var sampleConfig common.CommandConfig

func init() {
	sampleCmd.Flags().StringVarP(&sampleConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
}

func runSample(cmd *cobra.Command, args []string) error {
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// The sample is always JSON since it feeds back into the score command.
	sampleConfig.OutputFormat = "json"
	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(types.SampleResume(), sampleConfig)
}
