package cli

import (
	"github.com/spf13/cobra"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported document formats",
	Long: `Lists the file formats sftgen can convert. Legacy binary formats
(.doc, .ppt) have no local decoder and require a configured remote
parsing service.`,
	Run: runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, _ []string) {
	cmd.Println("Supported formats:")
	cmd.Println()
	for _, f := range domain.AllFormats() {
		note := ""
		if f.RequiresParser() {
			note = "  (remote parser required)"
		}
		cmd.Printf("  %-6s %s%s\n", f.Extension(), f.Description(), note)
	}
}
