package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search [question]",
	Short: "Retrieve matching chunks without generating an answer",
	Long: `Runs the retrieval stages only: filter extraction, query
decomposition, hybrid search (semantic vectors and BM25), score fusion
and reranking. Prints the ranked chunks instead of an LLM answer.

Language and page hints in the question become filters, e.g.
"search 'bengali page 12 rivers'" only searches Bengali chunks on
page 12.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// Flags for the search command.
var (
	searchLimit int
	searchJSON  bool
)

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0,
		"Maximum number of results (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false,
		"Output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	set, err := queryService.Retrieve(context.Background(), args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, set)
	}
	return outputSearchTable(cmd, set)
}

// outputSearchJSON prints the result set as indented JSON.
func outputSearchJSON(cmd *cobra.Command, set *domain.FusedResultSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	cmd.Println(string(data))
	return nil
}

// outputSearchTable prints the result set in human-readable form.
func outputSearchTable(cmd *cobra.Command, set *domain.FusedResultSet) error {
	if len(set.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	if len(set.SubQueries) > 1 {
		cmd.Println("Sub-queries:")
		for _, q := range set.SubQueries {
			cmd.Printf("  - %s\n", q)
		}
		cmd.Println()
	}
	if !set.Filter.IsEmpty() {
		cmd.Printf("Filter: %s\n\n", describeFilter(set.Filter))
	}

	cmd.Println("Results:")
	for i, r := range set.Results {
		cmd.Printf("[%d] %s (page %d, %s, score %.3f)\n",
			i+1, r.DocumentID, r.Page, r.Language, r.Score)
		cmd.Printf("    %s\n", snippet(r.Content, 160))
	}

	cmd.Printf("\nTotal: %d results\n", len(set.Results))
	return nil
}

// describeFilter renders the extracted constraints for display.
func describeFilter(f domain.Filter) string {
	parts := ""
	if f.Language != "" {
		parts += fmt.Sprintf("language=%s ", f.Language)
	}
	if f.Page != nil {
		parts += fmt.Sprintf("page=%d ", *f.Page)
	}
	if f.DocumentID != "" {
		parts += fmt.Sprintf("document=%s ", f.DocumentID)
	}
	if parts == "" {
		return "none"
	}
	return parts[:len(parts)-1]
}

// snippet collapses whitespace and truncates to at most n runes.
func snippet(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) > n {
		return string(runes[:n]) + "..."
	}
	return content
}
