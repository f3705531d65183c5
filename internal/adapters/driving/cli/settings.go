package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, remote parser, and generation options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for question and answer generation.`,
	RunE:  runSettingsLLM,
}

var settingsParserCmd = &cobra.Command{
	Use:   "parser",
	Short: "Configure remote parsing service",
	Long: `Configure the MinerU-compatible parsing service used for structured
extraction. Leave the URL empty to rely on local extraction only.`,
	RunE: runSettingsParser,
}

var settingsGenerationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Configure chunking and generation",
	Long:  `Set the questions generated per chunk and the maximum chunk size.`,
	RunE:  runSettingsGeneration,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsParserCmd)
	settingsCmd.AddCommand(settingsGenerationCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Parser]")
	if settings.Parser.IsConfigured() {
		cmd.Printf("  URL: %s\n", settings.Parser.URL)
		cmd.Printf("  Timeout: %s\n", settings.Parser.Timeout)
	} else {
		cmd.Printf("  URL: (not set, local extraction only)\n")
	}
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Questions per chunk: %d\n", settings.Generation.QuestionsPerChunk)
	cmd.Printf("  Chunk size: %d\n", settings.Generation.ChunkSize)
	cmd.Printf("  File workers: %d\n", settings.Generation.FileWorkers)
	cmd.Printf("  Answer workers: %d\n", settings.Generation.AnswerWorkers)
	cmd.Printf("  Max attempts: %d\n", settings.Generation.MaxAttempts)
	cmd.Println()

	cmd.Println("[Output]")
	cmd.Printf("  Directory: %s\n", settings.Output.Dir)
	cmd.Printf("  File name: %s\n", settings.Output.FileName)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'sftgen settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Sftgen Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Step 1: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Println("Question and answer generation requires an LLM provider.")
	cmd.Println()
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure Remote Parser")
	cmd.Println("-------------------------------")
	cmd.Println("A MinerU-compatible service improves extraction quality and is")
	cmd.Println("required for legacy .doc and .ppt files. Optional.")
	cmd.Println()
	if err := configureParser(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure Generation")
	cmd.Println("----------------------------")
	if err := configureGeneration(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureLLMProvider(cmd, reader)
}

func runSettingsParser(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureParser(cmd, reader)
}

func runSettingsGeneration(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureGeneration(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureParser(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Print("Enter parser URL (empty to disable): ")
	url := readLine(reader)

	if url == "" {
		if err := settingsService.SetParser("", 0); err != nil {
			return fmt.Errorf("failed to configure parser: %w", err)
		}
		cmd.Println("Remote parsing disabled, local extraction only.")
		cmd.Println()
		return nil
	}

	cmd.Print("Request timeout in seconds [300]: ")
	input := readLine(reader)
	timeout := time.Duration(parseIntDefault(input, 300)) * time.Second

	if err := settingsService.SetParser(url, timeout); err != nil {
		return fmt.Errorf("failed to configure parser: %w", err)
	}

	// Validate the configuration by probing the health endpoint
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateParserConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("parser configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Parser configured: %s\n\n", url)
	return nil
}

func configureGeneration(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Questions per chunk [%d]: ", settings.Generation.QuestionsPerChunk)
	input := readLine(reader)
	questions := parseIntDefault(input, settings.Generation.QuestionsPerChunk)

	cmd.Printf("Chunk size in characters [%d]: ", settings.Generation.ChunkSize)
	input = readLine(reader)
	chunkSize := parseIntDefault(input, settings.Generation.ChunkSize)

	if err := settingsService.SetGeneration(questions, chunkSize); err != nil {
		return fmt.Errorf("failed to configure generation: %w", err)
	}

	cmd.Printf("Generation configured: %d questions per chunk, %d character chunks\n\n",
		questions, chunkSize)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func parseIntDefault(input string, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
