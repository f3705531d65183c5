package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui"
	"github.com/datacraft-labs/sftgen-cli/internal/connectors/filesystem"
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
)

// watchDebounce groups bursts of filesystem events into one re-run.
const watchDebounce = 2 * time.Second

var (
	generateOutput    string
	generateNum       int
	generateChunkSize int
	generateModel     string
	generateProvider  string
	generateParserURL string
	generateOverwrite bool
	generateWorkers   int
	generateWatch     bool
	generateTUI       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate an SFT dataset from documents",
	Long: `Converts a document file or directory into question/answer pairs
appended to a JSON Lines dataset.

Every supported file under the input is split into chunks, the LLM
generates questions and answers for each chunk, and the resulting
pairs are written incrementally. Failures are isolated: one broken
file or chunk never aborts the rest of the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "dataset output path (default from settings)")
	generateCmd.Flags().IntVarP(&generateNum, "num", "n", 0, "questions per chunk (default from settings)")
	generateCmd.Flags().IntVar(&generateChunkSize, "chunk-size", 0, "maximum chunk size in characters")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "LLM model override")
	generateCmd.Flags().StringVar(&generateProvider, "provider", "", "LLM provider override (openai, anthropic, ollama)")
	generateCmd.Flags().StringVar(&generateParserURL, "parser-url", "", "remote parser URL override")
	generateCmd.Flags().BoolVar(&generateOverwrite, "overwrite", false, "truncate the output file instead of appending")
	generateCmd.Flags().IntVar(&generateWorkers, "workers", 0, "concurrent file workers")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "keep watching the input and reprocess changed files")
	generateCmd.Flags().BoolVar(&generateTUI, "tui", false, "show the live dashboard")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if pipelineBuilder == nil {
		return errors.New("pipeline builder not configured")
	}
	if generateTUI && generateWatch {
		return errors.New("cannot combine --tui with --watch")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	applyGenerateFlags(settings)

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("configuration is not usable (run 'sftgen settings wizard'): %w", err)
	}

	pipe, err := pipelineBuilder(*settings)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	input := args[0]
	opts := driving.RunOptions{
		OutputPath: generateOutput,
		Overwrite:  generateOverwrite,
	}
	ctx := cmd.Context()

	if generateTUI {
		return runDashboard(ctx, cmd, pipe, input, opts)
	}

	cmd.Printf("Generating dataset from %s...\n", input)

	report, err := generateWithProgress(ctx, cmd, pipe, input, opts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	cmd.Println()
	printReport(cmd, report)
	if report.FilesDiscovered == 0 {
		cmd.Printf("\nNo supported documents found under %s. Run 'sftgen formats' to list supported types.\n", input)
	}

	if generateWatch {
		return watchAndRegenerate(ctx, cmd, pipe, input, opts)
	}
	return nil
}

// applyGenerateFlags lays the command-line overrides over the resolved
// settings. Flags are the highest-precedence configuration layer.
func applyGenerateFlags(settings *domain.AppSettings) {
	if generateProvider != "" {
		p := domain.AIProvider(generateProvider)
		if p != settings.LLM.Provider {
			// Provider switch invalidates the configured endpoint and
			// model; fall back to provider defaults unless --model is
			// also given.
			settings.LLM.Provider = p
			settings.LLM.BaseURL = ""
			settings.LLM.Model = domain.DefaultLLMModels()[p]
		}
	}
	if generateModel != "" {
		settings.LLM.Model = generateModel
	}
	if generateParserURL != "" {
		settings.Parser.URL = generateParserURL
		if settings.Parser.Timeout <= 0 {
			settings.Parser.Timeout = domain.DefaultAppSettings().Parser.Timeout
		}
	}
	if generateNum > 0 {
		settings.Generation.QuestionsPerChunk = generateNum
	}
	if generateChunkSize > 0 {
		settings.Generation.ChunkSize = generateChunkSize
	}
	if generateWorkers > 0 {
		settings.Generation.FileWorkers = generateWorkers
	}
}

// generateWithProgress runs the pipeline while displaying progress updates.
func generateWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	pipe driving.Pipeline,
	input string,
	opts driving.RunOptions,
) (*domain.Report, error) {
	type runResult struct {
		report *domain.Report
		err    error
	}

	// Start the run in a goroutine
	resCh := make(chan runResult, 1)
	go func() {
		report, err := pipe.Run(ctx, input, opts)
		resCh <- runResult{report: report, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastPairs := -1
	for {
		select {
		case res := <-resCh:
			if res.report != nil && lastPairs >= 0 {
				cmd.Printf("\rProcessed %d files, %d pairs written\n",
					res.report.FilesDiscovered, res.report.PairsWritten)
			}
			return res.report, res.err
		case <-ticker.C:
			status := pipe.Status()
			if status.Running && status.PairsWritten > lastPairs {
				cmd.Printf("\rProcessing %d/%d files, %d pairs",
					status.FilesDone, status.TotalFiles, status.PairsWritten)
				lastPairs = status.PairsWritten
			}
		}
	}
}

// runDashboard hands the run to the bubbletea dashboard and prints the
// final report once the alternate screen is gone.
func runDashboard(
	ctx context.Context,
	cmd *cobra.Command,
	pipe driving.Pipeline,
	input string,
	opts driving.RunOptions,
) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in dashboard: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.Config{
		Pipeline: pipe,
		Input:    input,
		Options:  opts,
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}
	app.WithContext(ctx)

	report, err := app.Run()
	if err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}

	if report != nil {
		printReport(cmd, report)
	}
	return nil
}

// watchAndRegenerate blocks watching the input tree and reprocesses
// created or modified files. Re-runs always append so pairs from the
// initial pass survive; deletions are ignored because records already
// written stay valid.
func watchAndRegenerate(
	ctx context.Context,
	cmd *cobra.Command,
	pipe driving.Pipeline,
	input string,
	opts driving.RunOptions,
) error {
	connector := filesystem.New(input)
	changes, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}
	defer connector.Close()

	opts.Overwrite = false

	cmd.Println("\nWatching for changes. Press Ctrl+C to stop.")

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if change.Type == domain.ChangeDeleted {
				continue
			}
			pending[change.Path] = struct{}{}
			// A fresh timer per event sidesteps the Reset race.
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil

			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})

			for _, p := range paths {
				cmd.Printf("Change detected: %s\n", p)
				report, err := pipe.Run(ctx, p, opts)
				if err != nil {
					logger.Error("reprocess failed", "path", p, "error", err)
					continue
				}
				cmd.Printf("  %d pairs written (%s)\n", report.PairsWritten, formatDuration(report.Duration))
			}
		}
	}
}
