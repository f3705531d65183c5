package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
	Long:  `Lists past runs from the local history ledger and shows per-file outcomes.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run with per-file outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	reports, err := runHistory.List(context.Background(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(reports) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Println("Recent runs:")
	cmd.Println()
	for i := range reports {
		r := &reports[i]
		cmd.Printf("  %s\n", r.RunID)
		cmd.Printf("    Started:  %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Printf("    Input:    %s\n", r.InputPath)
		cmd.Printf("    Files:    %d processed, %d failed, %d skipped\n",
			r.FilesProcessed, r.FilesFailed, r.FilesSkipped)
		cmd.Printf("    Pairs:    %d\n", r.PairsWritten)
		cmd.Println()
	}

	cmd.Printf("Total: %d runs\n", len(reports))
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if runHistory == nil {
		return errors.New("run history not configured")
	}

	report, err := runHistory.Get(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		return fmt.Errorf("failed to load run: %w", err)
	}

	printReport(cmd, report)
	return nil
}

// printReport renders a run report. Shared with the generate command's
// final summary.
func printReport(cmd *cobra.Command, report *domain.Report) {
	cmd.Printf("Run %s\n\n", report.RunID)
	cmd.Printf("  Input:    %s\n", report.InputPath)
	cmd.Printf("  Output:   %s\n", report.OutputPath)
	cmd.Printf("  Started:  %s\n", report.StartedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("  Duration: %s\n", formatDuration(report.Duration))
	cmd.Printf("  Files:    %d discovered, %d processed, %d failed, %d skipped\n",
		report.FilesDiscovered, report.FilesProcessed, report.FilesFailed, report.FilesSkipped)
	cmd.Printf("  Chunks:   %d processed, %d failed\n", report.ChunksProcessed, report.ChunksFailed)
	cmd.Printf("  Pairs:    %d written\n", report.PairsWritten)

	if len(report.Files) == 0 {
		return
	}

	cmd.Println("\n  File outcomes:")
	for i := range report.Files {
		f := &report.Files[i]
		cmd.Printf("    [%s] %s", f.State, f.Path)
		if f.State == domain.StateWritten {
			cmd.Printf(" (%d pairs, %s)", f.PairsWritten, formatDuration(f.Duration))
		}
		cmd.Println()
		if f.Error != "" {
			cmd.Printf("      %s: %s\n", f.Stage, f.Error)
		}
	}
}

func formatDuration(d time.Duration) string {
	if d >= time.Minute {
		return d.Round(time.Second).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
