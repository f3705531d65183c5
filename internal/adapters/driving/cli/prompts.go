package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datacraft-labs/sftgen-cli/internal/core/ports/driven"
)

// promptDescriptions maps the well-known prompt names to what they drive.
var promptDescriptions = []struct {
	name string
	desc string
}{
	{driven.PromptQuestionSystem, "system prompt for question generation"},
	{driven.PromptQuestionUser, "user prompt asking for questions (%d count, %s chunk)"},
	{driven.PromptAnswerSystem, "system prompt for answer generation"},
	{driven.PromptAnswerUser, "user prompt asking for one answer (%s chunk, %s question)"},
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage LLM prompt templates",
	Long: `Shows and locates the prompt templates used for question and answer
generation. Edit the files under the prompt directory to override the
built-in defaults; changes are picked up on the next run.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt template names",
	Run:   runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a resolved prompt template",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

var promptsEditPathCmd = &cobra.Command{
	Use:   "edit-path",
	Short: "Print the prompt override directory",
	RunE:  runPromptsEditPath,
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsEditPathCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) {
	cmd.Println("Prompt templates:")
	cmd.Println()
	for _, p := range promptDescriptions {
		cmd.Printf("  %-18s %s\n", p.name, p.desc)
	}
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}

	content, err := promptStore.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load prompt: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runPromptsEditPath(cmd *cobra.Command, _ []string) error {
	if promptDir == "" {
		return errors.New("prompt store not configured")
	}

	cmd.Println(promptDir)
	return nil
}
