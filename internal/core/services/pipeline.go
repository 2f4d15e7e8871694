package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure QueryPipeline implements the interfaces.
var (
	_ driving.QueryService    = (*QueryPipeline)(nil)
	_ driven.PromptStoreAware = (*QueryPipeline)(nil)
)

const defaultAnswerSystemPrompt = `You are a helpful AI assistant with access to a multilingual document database. Your task is to answer questions based on the provided context from retrieved documents.

Instructions:
1. Answer based ONLY on the provided context
2. If the context doesn't contain enough information, say so
3. Cite the document/page when referencing information
4. Be concise but comprehensive
5. Maintain the language of the question in your response when appropriate
6. If multiple documents are relevant, synthesize information from all of them`

// noContextAnswer is returned when retrieval finds nothing. An empty
// corpus match is a legitimate outcome, not an error.
const noContextAnswer = "I couldn't find any relevant information in the document database to answer your question."

// historyLimit bounds how many prior messages enter the prompt.
const historyLimit = 10

// sessionTitleLimit bounds the session title taken from the first question.
const sessionTitleLimit = 60

// QueryPipeline orchestrates the question path: filter extraction,
// decomposition, hybrid retrieval, reranking and answer generation.
// Each stage degrades independently per its own failure policy; the
// pipeline as a whole returns an error only for cancellation,
// generation failure, or storage failure.
type QueryPipeline struct {
	filters    *FilterExtractor
	decomposer *Decomposer
	retriever  *HybridRetriever
	reranker   *Reranker
	llm        driven.LLMService
	fallback   driven.LLMService
	sessions   driven.SessionStore
	prompts    driven.PromptStore
	cfg        domain.RetrievalSettings
}

// NewQueryPipeline creates the question pipeline.
// llm and fallback are optional: without both, Ask degrades to
// retrieval plus the no-context answer path.
func NewQueryPipeline(
	filters *FilterExtractor,
	decomposer *Decomposer,
	retriever *HybridRetriever,
	reranker *Reranker,
	llm driven.LLMService,
	fallback driven.LLMService,
	sessions driven.SessionStore,
	cfg domain.RetrievalSettings,
) *QueryPipeline {
	return &QueryPipeline{
		filters:    filters,
		decomposer: decomposer,
		retriever:  retriever,
		reranker:   reranker,
		llm:        llm,
		fallback:   fallback,
		sessions:   sessions,
		cfg:        cfg,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (p *QueryPipeline) SetPromptStore(store driven.PromptStore) {
	p.prompts = store
}

// Retrieve runs the retrieval stages only and returns the fused,
// reranked context for a question.
func (p *QueryPipeline) Retrieve(ctx context.Context, question string, topK int) (*domain.FusedResultSet, error) {
	logger.Section("Retrieval")
	logger.Debug("Question: %q", question)
	defer logger.Timed("retrieval")()

	question = strings.TrimSpace(question)
	if topK <= 0 {
		topK = p.cfg.TopK
	}

	set := &domain.FusedResultSet{
		Query:      question,
		SubQueries: []string{question},
		Results:    []domain.RetrievalResult{},
	}
	if question == "" {
		return set, nil
	}

	// Stage 1: metadata filters out of the question text.
	searchText := question
	if p.cfg.EnableMetadataFilter && p.filters != nil {
		set.Filter, searchText = p.filters.Extract(question)
		if !set.Filter.IsEmpty() {
			logger.Info("Extracted filter, residual query: %q", searchText)
		}
	}
	set.Query = searchText

	// Stage 2: decomposition.
	queries := []string{searchText}
	if p.decomposer != nil {
		queries = p.decomposer.Decompose(ctx, searchText)
	}
	set.SubQueries = queries

	// Stage 3: hybrid retrieval. Oversample when a rerank will
	// shrink the set afterwards.
	candidateK := topK
	if p.cfg.EnableRerank && p.cfg.RerankCandidates > candidateK {
		candidateK = p.cfg.RerankCandidates
	}
	results, err := p.retriever.RetrieveMulti(ctx, queries, set.Filter, candidateK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	// Stage 4: rerank down to the requested size.
	if p.reranker != nil {
		results = p.reranker.Rerank(ctx, searchText, results, topK)
	} else if len(results) > topK {
		results = results[:topK]
	}

	set.Results = results
	logger.Info("Final results: %d", len(results))
	return set, nil
}

// Ask answers a question within a chat session, grounded on retrieved
// context. An empty sessionID opens a new session.
func (p *QueryPipeline) Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("ask: %w: empty question", domain.ErrInvalidInput)
	}

	sessionID, err := p.ensureSession(ctx, sessionID, question)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	history, err := p.loadHistory(ctx, sessionID)
	if err != nil {
		logger.Warn("Loading history failed: %v (answering without it)", err)
		history = nil
	}

	if err := p.recordMessage(ctx, sessionID, domain.RoleUser, question); err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	set, err := p.Retrieve(ctx, question, p.cfg.TopK)
	if err != nil {
		return nil, err
	}

	answer := &domain.Answer{
		SessionID: sessionID,
		Sources:   set.Results,
	}

	if len(set.Results) == 0 {
		logger.Info("No relevant context found")
		answer.Text = noContextAnswer
		if err := p.recordMessage(ctx, sessionID, domain.RoleAssistant, answer.Text); err != nil {
			return nil, fmt.Errorf("ask: %w", err)
		}
		return answer, nil
	}

	prompt := p.buildPrompt(question, set.Results, history)
	text, model, err := p.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ask: generate answer: %w", err)
	}
	answer.Text = text
	answer.Model = model

	if err := p.recordMessage(ctx, sessionID, domain.RoleAssistant, text); err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	return answer, nil
}

// ensureSession returns an existing session ID or opens a new session
// titled after the first question.
func (p *QueryPipeline) ensureSession(ctx context.Context, sessionID, question string) (string, error) {
	if sessionID != "" {
		return sessionID, nil
	}

	title := question
	if runes := []rune(title); len(runes) > sessionTitleLimit {
		title = string(runes[:sessionTitleLimit])
	}

	session := &domain.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := p.sessions.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	logger.Debug("Opened session %s", session.ID)
	return session.ID, nil
}

func (p *QueryPipeline) loadHistory(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return p.sessions.Messages(ctx, sessionID, historyLimit)
}

func (p *QueryPipeline) recordMessage(ctx context.Context, sessionID string, role domain.ChatRole, content string) error {
	msg := &domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.sessions.AddMessage(ctx, msg); err != nil {
		return fmt.Errorf("record %s message: %w", role, err)
	}
	return nil
}

// buildPrompt assembles the grounded generation prompt: system
// instructions, prior conversation, context blocks tagged with their
// provenance, then the question.
func (p *QueryPipeline) buildPrompt(question string, context []domain.RetrievalResult, history []domain.ChatMessage) string {
	var b strings.Builder
	b.WriteString(p.systemPrompt())
	b.WriteString("\n\n")

	if len(history) > 0 {
		b.WriteString("Previous conversation:\n")
		for _, msg := range history {
			b.WriteString(strings.ToUpper(msg.Role.String()))
			b.WriteString(": ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Context from documents:\n")
	for i, r := range context {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Document: %s, Page: %d, Language: %s]\n%s", r.DocumentID, r.Page, r.Language, r.Content)
	}

	fmt.Fprintf(&b, "\n\nQuestion: %s\n\nAnswer:", question)
	return b.String()
}

func (p *QueryPipeline) systemPrompt() string {
	if p.prompts != nil {
		if s, err := p.prompts.Load(driven.PromptAnswerSystem); err == nil && s != "" {
			return s
		}
	}
	return defaultAnswerSystemPrompt
}

// generate tries the primary LLM, then the fallback.
func (p *QueryPipeline) generate(ctx context.Context, prompt string) (text, model string, err error) {
	defer logger.Timed("generation")()

	opts := driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.7,
	}

	var firstErr error
	for _, llm := range []driven.LLMService{p.llm, p.fallback} {
		if llm == nil {
			continue
		}
		text, err := llm.Generate(ctx, prompt, opts)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			logger.Warn("Generation with %s failed: %v", llm.ModelName(), err)
			continue
		}
		return text, llm.ModelName(), nil
	}

	if firstErr == nil {
		firstErr = domain.ErrLLMUnavailable
	}
	return "", "", firstErr
}
