// Command sftgen turns local documents into supervised fine-tuning
// datasets. It wires the driven adapters (config stores, LLM clients,
// extractors, post-processors, JSONL writers, run history) into the core
// pipeline and hands everything to the CLI layer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driven/ai"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driven/config/env"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driven/config/file"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driven/dataset/jsonl"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driven/storage/sqlite"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/cli"
	"github.com/datacraft-labs/sftgen-cli/internal/connectors/filesystem"
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driving"
	"github.com/datacraft-labs/sftgen-cli/internal/core/services"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/docx"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/markdown"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/pdf"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/plaintext"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/pptx"
	"github.com/datacraft-labs/sftgen-cli/internal/extractors/remote"
	"github.com/datacraft-labs/sftgen-cli/internal/logger"
	"github.com/datacraft-labs/sftgen-cli/internal/postprocessors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env in the working directory is a convenience for API keys;
	// absence is the normal case.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settingsService := services.NewSettingsService(fileStore, env.NewStore(), ai.NewConfigValidator())

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	// Run history is best effort: a broken local database disables the
	// ledger but never blocks generation.
	var (
		runStore   driven.RunStore
		runHistory driving.RunHistory
	)
	if store, err := sqlite.NewStore(""); err != nil {
		logger.Warn("run history disabled", "error", err)
	} else {
		defer store.Close()
		runStore = store
		runHistory = services.NewRunHistoryService(store)
	}

	cli.SetServices(cli.Services{
		Settings:      settingsService,
		Runs:          runHistory,
		Prompts:       promptStore,
		BuildPipeline: newPipelineBuilder(promptStore, runStore),
		PromptDir:     promptStore.Dir(),
	})

	return cli.Execute(ctx)
}

// newPipelineBuilder returns the per-run pipeline factory. A fresh
// pipeline is built for every invocation so that flag and MCP overrides
// (provider, model, chunk size) reach the LLM client and the chunker.
func newPipelineBuilder(prompts driven.PromptStore, runStore driven.RunStore) cli.PipelineBuilder {
	return func(settings domain.AppSettings) (driving.Pipeline, error) {
		llm, err := ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			return nil, err
		}
		if llm == nil {
			return nil, fmt.Errorf("%w: configure a provider with 'sftgen settings wizard'", domain.ErrLLMUnavailable)
		}

		parser, err := ai.CreateParser(&settings.Parser)
		if err != nil {
			return nil, fmt.Errorf("creating parser client: %w", err)
		}

		extractors := []driven.Extractor{
			pdf.New(),
			docx.New(),
			pptx.New(),
			plaintext.New(),
			markdown.New(),
		}
		if parser != nil {
			extractors = append(extractors, remote.New(parser))
		}

		processors, err := buildProcessors(settings)
		if err != nil {
			return nil, err
		}

		generator := services.NewGenerator(llm, settings.LLM, settings.Generation)
		generator.SetPromptStore(prompts)

		return services.NewPipeline(
			filesystem.NewFactory(),
			services.NewExtractorRegistry(extractors...),
			processors,
			generator,
			jsonl.NewFactory(),
			runStore,
			settings,
		), nil
	}
}

// buildProcessors assembles the post-processing chain from settings.
// Generation.ChunkSize overrides the chunker's configured size so the
// --chunk-size flag takes effect without editing config.toml.
func buildProcessors(settings domain.AppSettings) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	names := settings.Pipeline.Processors
	if len(names) == 0 {
		names = domain.DefaultPipelineConfig().Processors
	}

	procs := make([]driven.PostProcessor, 0, len(names))
	for _, name := range names {
		cfg := settings.Pipeline.GetProcessorConfig(name)
		if name == "chunker" && settings.Generation.ChunkSize > 0 {
			merged := map[string]any{"chunk_size": settings.Generation.ChunkSize}
			for k, v := range cfg {
				if k != "chunk_size" {
					merged[k] = v
				}
			}
			cfg = merged
		}
		proc, err := registry.Build(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("building processor %q: %w", name, err)
		}
		procs = append(procs, proc)
	}

	return postprocessors.NewPipeline(procs...), nil
}
