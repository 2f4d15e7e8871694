package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
	Long:  `List, inspect or delete recorded chat sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show a session's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear [session-id]",
	Short: "Delete a session and its messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsClear,
}

// sessionsLimit caps the list output.
var sessionsLimit int

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 0,
		"Maximum number of sessions (0 = default)")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	sessions, err := sessionService.List(context.Background(), sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions recorded.")
		return nil
	}

	cmd.Println("Recent sessions:")
	for _, s := range sessions {
		cmd.Printf("  %s  %s  %s\n",
			s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), s.Title)
	}

	cmd.Printf("\nTotal: %d sessions\n", len(sessions))
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	messages, err := sessionService.Show(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to show session: %w", err)
	}

	if len(messages) == 0 {
		cmd.Println("Session has no messages.")
		return nil
	}

	for _, m := range messages {
		cmd.Printf("[%s] %s\n%s\n\n",
			m.CreatedAt.Format("2006-01-02 15:04"), m.Role, m.Content)
	}
	return nil
}

func runSessionsClear(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	if err := sessionService.Clear(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	cmd.Printf("Session %s cleared.\n", args[0])
	return nil
}
