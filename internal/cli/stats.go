package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/raphaelgruber/contentpilot/internal/client"
	"github.com/raphaelgruber/contentpilot/internal/metrics"
	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server runtime statistics",
	Long: `Show turn timings, model token usage and extraction counters of a running
contentpilot-server. Counters are in-memory and reset on restart.

Examples:
  contentpilot stats
  contentpilot stats --server http://localhost:8484`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	c := remoteClient()
	if c == nil {
		c = client.New("")
	}

	snap, err := c.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}
	printStats(out, "Server Statistics (in-memory, since restart)", snap)
	return nil
}

// printStats writes a statistics snapshot.
func printStats(w io.Writer, title string, snap *metrics.Snapshot) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, "═══════════════════════════════════════════════")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", snap.UptimeSeconds)

	if snap.Turn != nil {
		fmt.Fprintf(w, "\nTurns:\n")
		printOpStats(w, snap.Turn)
		fmt.Fprintf(w, "  Failed: %d\n", snap.TurnsFailed)
		for _, mode := range models.Modes() {
			if n, ok := snap.TurnsByMode[string(mode)]; ok {
				fmt.Fprintf(w, "  %-12s %d\n", mode, n)
			}
		}
	}

	if snap.LLMChat != nil {
		fmt.Fprintf(w, "\nLLM Chat:\n")
		printOpStats(w, snap.LLMChat)
		printTokenStats(w, snap.LLMChat)
	}

	if snap.LLMPrompt != nil {
		fmt.Fprintf(w, "\nLLM Prompt:\n")
		printOpStats(w, snap.LLMPrompt)
		printTokenStats(w, snap.LLMPrompt)
	}

	if snap.DBQuery != nil {
		fmt.Fprintf(w, "\nDB Query:\n")
		printOpStats(w, snap.DBQuery)
	}

	fmt.Fprintf(w, "\nExtraction: %d structured, %d raw\n", snap.ExtractionHits, snap.ExtractionMisses)
	fmt.Fprintf(w, "Rejected submissions: %d\n", snap.ValidationRejected)
}

func printOpStats(w io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(w io.Writer, op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Fprintf(w, "  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Fprintf(w, ", avg %.0f", *op.AvgInputTokens)
	}
	if op.MinInputTokens != nil && op.MaxInputTokens != nil {
		fmt.Fprintf(w, ", min %d, max %d", *op.MinInputTokens, *op.MaxInputTokens)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Fprintf(w, ", avg %.0f", *op.AvgOutputTokens)
	}
	if op.MinOutputTokens != nil && op.MaxOutputTokens != nil {
		fmt.Fprintf(w, ", min %d, max %d", *op.MinOutputTokens, *op.MaxOutputTokens)
	}
	fmt.Fprintln(w)
}
