package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question session",
	Long: `Reads questions from stdin and answers them in one chat session, so
follow-up questions can refer to earlier exchanges. Type "exit" or
press Ctrl-D to leave.`,
	RunE: runChat,
}

// chatSession resumes an existing chat session.
var chatSession string

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "",
		"Session ID to resume (empty = new session)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := context.Background()
	reader := bufio.NewReader(cmd.InOrStdin())
	sessionID := chatSession

	cmd.Println("Ask questions about your documents. Type \"exit\" to leave.")

	for {
		cmd.Print("\n> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				cmd.Println()
				return nil
			}
			return fmt.Errorf("read question: %w", err)
		}

		question := strings.TrimSpace(line)
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		answer, err := queryService.Ask(ctx, sessionID, question)
		if err != nil {
			// One failed question should not end the conversation.
			cmd.Printf("Error: %v\n", err)
			continue
		}
		sessionID = answer.SessionID

		cmd.Println()
		printAnswer(cmd, answer)
	}
}
