package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about the corpus",
	Long: `Retrieves relevant chunks for the question and generates a grounded
answer with the configured LLM. The exchange is recorded in a chat
session; pass --session to continue an earlier one.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

// askSession continues an existing chat session.
var askSession string

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "",
		"Session ID to continue (empty = new session)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	answer, err := queryService.Ask(context.Background(), askSession, args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	printAnswer(cmd, answer)
	return nil
}

// printAnswer renders an answer with its sources and session ID.
func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for _, src := range answer.Sources {
			cmd.Printf("  - %s (page %d, %s)\n", src.DocumentID, src.Page, src.Language)
		}
	}

	cmd.Printf("\nSession: %s\n", answer.SessionID)
}
