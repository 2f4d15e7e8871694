package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "glossa", rootCmd.Use)
}

func TestRootCmd_Short(t *testing.T) {
	assert.Equal(t, "Question answering over a multilingual document corpus", rootCmd.Short)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	expected := []string{
		"search", "ask", "chat",
		"ingest", "watch", "reindex", "status",
		"document", "sessions", "settings",
		"eval", "mcp", "version",
	}
	for _, name := range expected {
		assert.Contains(t, commandNames, name)
	}
}

func TestRootCmd_HasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "verbose flag should exist")
	assert.Equal(t, "v", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCmd_SilencesUsage(t *testing.T) {
	assert.True(t, rootCmd.SilenceUsage)
}
