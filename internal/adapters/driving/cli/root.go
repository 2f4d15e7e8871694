// Package cli implements the glossa command-line interface.
// Commands talk to the core through the driving ports; the service
// graph is assembled here from the persisted settings.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/ai"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/config/file"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/keyring"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/ocr"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/scorer"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/sparse/bm25"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/storage/sqlite"
	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/vector/qdrant"
	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
	"github.com/glossa-labs/glossa-cli/internal/core/services"
	"github.com/glossa-labs/glossa-cli/internal/logger"
	"github.com/glossa-labs/glossa-cli/internal/postprocessors"
	"github.com/glossa-labs/glossa-cli/internal/postprocessors/chunker"
	"github.com/glossa-labs/glossa-cli/internal/postprocessors/llmcleanup"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected at startup. Commands check for nil and report the
// missing dependency instead of panicking; tests swap in mocks.
var (
	queryService    driving.QueryService
	ingestService   driving.IngestOrchestrator
	documentService driving.DocumentService
	sessionService  driving.SessionService
	settingsService driving.SettingsService
	evalService     driving.EvalService
)

// verboseFlag is the persistent --verbose flag.
var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "glossa",
	Short: "Question answering over a multilingual document corpus",
	Long: `Glossa ingests PDF documents in English, Chinese, Hindi, Bengali and
Urdu into a hybrid index (semantic vectors plus BM25) and answers
questions about them with a grounded LLM response.

Run "glossa ingest" to index documents, "glossa ask" to ask a single
question, or "glossa chat" for a conversation that remembers context.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"Print pipeline stages to stderr")
}

// Execute wires the production services and runs the root command.
// The build version comes from main via -ldflags.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	if err := initServices(); err != nil {
		// Init failures bypass cobra, so print them the same way.
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return rootCmd.Execute()
}

// initServices assembles the service graph from the persisted
// settings. Invalid settings abort startup; an unconfigured provider
// only disables the stages that need it.
func initServices() error {
	// A .env next to the binary may carry API keys. Absence is fine.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.Ingest.DataDir)
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}
	chunks := store.ChunkStore()
	sessions := store.SessionStore()
	jobs := store.JobStore()

	vectors := qdrant.NewStore(qdrant.Config{
		URL:        settings.VectorStore.URL,
		APIKey:     settings.VectorStore.APIKey,
		Collection: settings.VectorStore.Collection,
		Timeout:    settings.RequestTimeout,
	})

	sparse := bm25.New(chunks, bm25.Config{})
	if err := sparse.Rebuild(context.Background()); err != nil {
		logger.Warn("Sparse index rebuild failed: %v", err)
	}

	var prompts driven.PromptStore
	if ps, err := file.NewPromptStore(""); err == nil {
		prompts = ps
	} else {
		logger.Warn("Prompt store unavailable: %v", err)
	}

	geminiKeys := geminiKeyRing(*settings)

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding, geminiKeys)
	switch {
	case err != nil:
		logger.Warn("Embedding setup failed, dense retrieval disabled: %v", err)
	case embedder == nil:
		// A sparse-only setup is a valid choice; only mention it in
		// verbose runs.
		logger.Info("Embedding provider not configured, dense retrieval disabled")
	}

	llm, err := ai.CreateLLMService(&settings.LLM, geminiKeys)
	if err != nil {
		logger.Warn("LLM setup failed: %v", err)
	}
	fallback, err := ai.CreateLLMService(&settings.LLMFallback, geminiKeys)
	if err != nil {
		logger.Warn("Fallback LLM setup failed: %v", err)
	}

	relevance := buildScorer(settings.Retrieval, llm, fallback, prompts)

	decomposer := services.NewDecomposer(llm, fallback, settings.Retrieval)
	retriever := services.NewHybridRetriever(embedder, vectors, sparse, chunks, settings.Retrieval)
	reranker := services.NewReranker(relevance, settings.Retrieval)

	pipeline := services.NewQueryPipeline(
		services.NewFilterExtractor(),
		decomposer,
		retriever,
		reranker,
		llm,
		fallback,
		sessions,
		settings.Retrieval,
	)
	if prompts != nil {
		decomposer.SetPromptStore(prompts)
		pipeline.SetPromptStore(prompts)
	}

	queryService = pipeline
	ingestService = services.NewIngestService(
		*settings,
		ocr.NewService(ocr.Config{}),
		buildIngestPipeline(*settings, llm, prompts),
		embedder,
		vectors,
		chunks,
		jobs,
		sparse,
	)
	documentService = services.NewDocumentService(chunks, vectors, sparse)
	sessionService = services.NewSessionService(sessions)
	evalService = services.NewEvaluator(pipeline, relevance)

	return nil
}

// geminiKeyRing pools every configured Gemini key into one rate-limited
// ring so embedding and generation rotate over the same per-key quota.
// Returns nil when no slot uses Gemini.
func geminiKeyRing(settings domain.Settings) driven.KeyRing {
	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	if settings.Embedding.Provider == domain.AIProviderGemini {
		for _, k := range settings.Embedding.APIKeys {
			add(k)
		}
	}
	if settings.LLM.Provider == domain.AIProviderGemini {
		add(settings.LLM.APIKey)
	}
	if settings.LLMFallback.Provider == domain.AIProviderGemini {
		add(settings.LLMFallback.APIKey)
	}
	if len(keys) == 0 {
		return nil
	}

	return keyring.New(keyring.Config{
		Keys: keys,
		RPM:  settings.Ingest.RateLimitRPM,
	})
}

// buildScorer selects the rerank scorer. The LLM backend needs a
// configured model; without one the lexical scorer keeps reranking
// deterministic and offline.
func buildScorer(
	cfg domain.RetrievalSettings,
	llm, fallback driven.LLMService,
	prompts driven.PromptStore,
) driven.RelevanceScorer {
	if cfg.RerankBackend == domain.RerankLLM {
		if llm == nil {
			llm = fallback
		}
		if llm != nil {
			s := scorer.NewLLMScorer(llm)
			if prompts != nil {
				s.SetPromptStore(prompts)
			}
			return s
		}
		logger.Warn("No LLM for rerank backend %q, using lexical scorer", cfg.RerankBackend)
	}
	return scorer.NewLexicalScorer()
}

// buildIngestPipeline assembles the post-extraction processors.
// Whitespace cleanup always runs; LLM repair only when enabled and a
// model is available.
func buildIngestPipeline(
	settings domain.Settings,
	llm driven.LLMService,
	prompts driven.PromptStore,
) driven.IngestPipeline {
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Ingest.ChunkSize),
		chunker.WithOverlap(settings.Ingest.ChunkOverlap),
	)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	var processors []driven.PageProcessor
	if clean, err := registry.Build("cleanup", nil); err == nil {
		processors = append(processors, clean)
	} else {
		logger.Warn("Cleanup processor unavailable: %v", err)
	}
	if settings.Ingest.EnableLLMCleanup && llm != nil {
		repair := llmcleanup.New(llm)
		if prompts != nil {
			repair.SetPromptStore(prompts)
		}
		processors = append(processors, repair)
	}

	return postprocessors.NewPipeline(splitter, processors...)
}
