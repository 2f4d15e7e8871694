package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
	"github.com/glossa-labs/glossa-cli/internal/core/services"
)

var evalCmd = &cobra.Command{
	Use:   "eval [set.yaml]",
	Short: "Evaluate retrieval quality against a question set",
	Long: `Runs every question of a YAML question set through the retrieval
pipeline and reports result counts, relevance and latency, e.g.

  name: geography
  questions:
    - text: What rivers flow through Bengal?
      expect_document: bn_geography_1a2b3c4d
    - text: How does irrigation work?

Use --out to additionally write the full report as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

// evalOut is the optional JSON report path.
var evalOut string

func init() {
	evalCmd.Flags().StringVarP(&evalOut, "out", "o", "",
		"Write the JSON report to this file")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	if evalService == nil {
		return errors.New("eval service not configured")
	}

	set, err := services.LoadEvalSet(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Evaluating %d questions from %q...\n\n", len(set.Questions), set.Name)

	report, err := evalService.Run(context.Background(), set)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	printEvalReport(cmd, report)

	if evalOut != "" {
		if err := writeEvalReport(report, evalOut); err != nil {
			return err
		}
		cmd.Printf("\nReport written to %s\n", evalOut)
	}
	return nil
}

// printEvalReport renders the per-question rows and the summary.
func printEvalReport(cmd *cobra.Command, report *driving.EvalReport) {
	for i, r := range report.Results {
		status := "ok"
		if r.Error != "" {
			status = "error: " + r.Error
		} else if !r.HitExpected {
			status = "expected document missing"
		}
		cmd.Printf("[%d] %s\n", i+1, r.Question)
		cmd.Printf("    %d results, relevance %.3f, %s, %s\n",
			r.Results, r.MeanRelevance, r.RetrievalLatency.Round(time.Millisecond), status)
	}

	cmd.Printf("\nSet: %s\n", report.Set)
	cmd.Printf("Mean relevance: %.3f\n", report.MeanRelevance)
	cmd.Printf("Hit rate: %.0f%%\n", report.HitRate*100)
	cmd.Printf("Total time: %s\n", report.TotalDuration.Round(time.Millisecond))
}

// writeEvalReport writes the report as indented JSON.
func writeEvalReport(report *driving.EvalReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
