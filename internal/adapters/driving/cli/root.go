// Package cli implements the sftgen command-line interface using cobra.
// Commands talk to the core exclusively through driving ports; services
// are injected from main via SetServices before Execute runs.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// PipelineBuilder constructs a pipeline for one run from resolved
// settings. The generate command rebuilds per invocation so flag
// overrides (provider, model, chunk size) reach the LLM client.
type PipelineBuilder func(settings domain.AppSettings) (driving.Pipeline, error)

// Services bundles the ports the commands depend on.
type Services struct {
	Settings      driving.SettingsService
	Runs          driving.RunHistory
	Prompts       driven.PromptStore
	BuildPipeline PipelineBuilder

	// PromptDir is where user prompt overrides live, shown by
	// "prompts edit-path".
	PromptDir string
}

var (
	settingsService driving.SettingsService
	runHistory      driving.RunHistory
	promptStore     driven.PromptStore
	pipelineBuilder PipelineBuilder
	promptDir       string
)

// SetServices wires the commands to their services.
// Must be called before Execute.
func SetServices(s Services) {
	settingsService = s.Settings
	runHistory = s.Runs
	promptStore = s.Prompts
	pipelineBuilder = s.BuildPipeline
	promptDir = s.PromptDir
}

var (
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "sftgen",
	Short: "Generate SFT datasets from documents",
	Long: `sftgen converts documents into supervised fine-tuning datasets.

Each input file (PDF, Word, PowerPoint, plain text, Markdown) is split
into chunks, an LLM generates question/answer pairs for every chunk,
and the pairs are appended to a JSON Lines dataset file.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Quiet wins when both are given.
		if quietFlag {
			logger.SetQuiet(true)
		} else if verboseFlag {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "only log errors")
}

// Execute runs the root command. Called once from main; the context
// carries signal cancellation into every command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
