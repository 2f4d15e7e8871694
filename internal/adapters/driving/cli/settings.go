package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, retrieval behaviour and ingestion
options. Settings persist in ~/.glossa/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single settings key",
	Long: `Sets one dotted settings key and persists the result, e.g.

  glossa settings set retrieval.dense_weight 0.7
  glossa settings set llm.provider ollama
  glossa settings set retrieval.fusion_method rrf

The change is validated against the whole settings tree first; an
invalid value is rejected and nothing is written.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeysCmd = &cobra.Command{
	Use:   "set-keys",
	Short: "Set embedding provider API keys",
	Long: `Prompts for one or more embedding API keys without echoing them.
Several keys enable round-robin rotation under rate limits. An empty
line finishes the list.`,
	RunE: runSettingsSetKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify provider connectivity",
	Long:  `Pings the configured embedding and LLM providers with the stored credentials.`,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if len(settings.Embedding.APIKeys) > 0 {
			masked := make([]string, len(settings.Embedding.APIKeys))
			for i, k := range settings.Embedding.APIKeys {
				masked[i] = maskAPIKey(k)
			}
			cmd.Printf("  API Keys: %s\n", strings.Join(masked, ", "))
		} else {
			cmd.Printf("  API Keys: (not set)\n")
		}
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Fallback LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLMFallback.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLMFallback.Model)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLMFallback.IsConfigured()))
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  URL: %s\n", settings.VectorStore.URL)
	cmd.Printf("  Collection: %s\n", settings.VectorStore.Collection)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Fusion: %s (dense %.2f / sparse %.2f)\n",
		settings.Retrieval.FusionMethod.Description(),
		settings.Retrieval.DenseWeight, settings.Retrieval.SparseWeight)
	cmd.Printf("  Sparse leg: %s\n", enabledStatus(settings.Retrieval.EnableSparse))
	cmd.Printf("  Rerank: %s (backend %s, candidates %d)\n",
		enabledStatus(settings.Retrieval.EnableRerank),
		settings.Retrieval.RerankBackend, settings.Retrieval.RerankCandidates)
	cmd.Printf("  Decomposition: %s (max %d sub-queries)\n",
		enabledStatus(settings.Retrieval.EnableDecomposition), settings.Retrieval.MaxSubQueries)
	cmd.Printf("  Metadata filter: %s\n", enabledStatus(settings.Retrieval.EnableMetadataFilter))
	cmd.Println()

	cmd.Println("[Ingestion]")
	cmd.Printf("  Chunk size: %d runes (overlap %d)\n",
		settings.Ingest.ChunkSize, settings.Ingest.ChunkOverlap)
	cmd.Printf("  LLM cleanup: %s\n", enabledStatus(settings.Ingest.EnableLLMCleanup))
	cmd.Printf("  Rate limit: %d rpm per key\n", settings.Ingest.RateLimitRPM)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsSetKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Enter embedding API keys. An empty line finishes the list.")

	var keys []string
	for {
		cmd.Printf("API key #%d: ", len(keys)+1)
		key := readPassword()
		cmd.Println()
		if key == "" {
			break
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		cmd.Println("No keys entered, nothing changed.")
		return nil
	}

	if err := settingsService.SetAPIKeys(keys); err != nil {
		return fmt.Errorf("failed to save API keys: %w", err)
	}

	cmd.Printf("Saved %d API key(s).\n", len(keys))
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Embedding provider: ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED (%v)\n", err)
	} else {
		cmd.Println("OK")
	}

	cmd.Print("LLM provider: ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED (%v)\n", err)
	} else {
		cmd.Println("OK")
	}

	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func enabledStatus(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
