package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingsCmd_Use(t *testing.T) {
	assert.Equal(t, "settings", settingsCmd.Use)
}

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	commands := settingsCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "set-keys")
	assert.Contains(t, commandNames, "check")
}

func TestSettingsShowCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Provider: Gemini (cloud)")
	assert.Contains(t, out, "API Keys: (not set)")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Provider: Ollama (local)")
	assert.Contains(t, out, "[Retrieval]")
	assert.Contains(t, out, "[Ingestion]")
}

func TestSettingsCmd_DefaultsToShow(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Current Settings")
}

func TestSettingsSetCmd_RequiresTwoArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "set", "retrieval.top_k"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSettingsSetCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "set", "retrieval.top_k", "7"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Set retrieval.top_k = 7")
}

func TestSettingsSetCmd_ServiceError(t *testing.T) {
	oldService := settingsService
	settingsService = &mockSettingsServiceError{}
	defer func() {
		settingsService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "set", "retrieval.top_k", "7"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set retrieval.top_k")
}

func TestSettingsCheckCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "check"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Embedding provider: OK")
	assert.Contains(t, buf.String(), "LLM provider: OK")
}

func TestSettingsCheckCmd_ReportsFailures(t *testing.T) {
	oldService := settingsService
	settingsService = &mockSettingsServiceError{}
	defer func() {
		settingsService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "check"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "FAILED (mock service error)")
}

func TestSettingsCmd_ServiceNotConfigured(t *testing.T) {
	oldService := settingsService
	settingsService = nil
	defer func() {
		settingsService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfiguredStatus(t *testing.T) {
	assert.Equal(t, "configured", configuredStatus(true))
	assert.Equal(t, "not configured", configuredStatus(false))
}

func TestEnabledStatus(t *testing.T) {
	assert.Equal(t, "enabled", enabledStatus(true))
	assert.Equal(t, "disabled", enabledStatus(false))
}
