package cli

import (
	"context"
	"errors"
	"time"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
)

var errMock = errors.New("mock service error")

// setupTestServices installs stub services with canned data and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldQuery := queryService
	oldIngest := ingestService
	oldDocument := documentService
	oldSession := sessionService
	oldSettings := settingsService
	oldEval := evalService

	queryService = &mockQueryService{}
	ingestService = &mockIngestService{}
	documentService = &mockDocumentService{}
	sessionService = &mockSessionService{}
	settingsService = &mockSettingsService{}
	evalService = &mockEvalService{}

	return func() {
		queryService = oldQuery
		ingestService = oldIngest
		documentService = oldDocument
		sessionService = oldSession
		settingsService = oldSettings
		evalService = oldEval
	}
}

// testResults is the canned retrieval output shared by the stubs.
func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{
			ChunkID:    "chunk-1",
			DocumentID: "bn-geography-1a2b",
			Content:    "The Ganges delta spans southern Bengal.",
			Score:      0.91,
			Method:     domain.RetrievalFused,
			Page:       12,
			Language:   domain.LanguageBengali,
		},
		{
			ChunkID:    "chunk-2",
			DocumentID: "en-water-9f8e",
			Content:    "Irrigation canals draw from the river system.",
			Score:      0.84,
			Method:     domain.RetrievalFused,
			Page:       3,
			Language:   domain.LanguageEnglish,
		},
	}
}

// mockQueryService returns canned retrieval results and answers.
type mockQueryService struct{}

func (m *mockQueryService) Retrieve(
	_ context.Context,
	question string,
	_ int,
) (*domain.FusedResultSet, error) {
	return &domain.FusedResultSet{
		Query:      question,
		SubQueries: []string{question},
		Results:    testResults(),
	}, nil
}

func (m *mockQueryService) Ask(
	_ context.Context,
	sessionID string,
	_ string,
) (*domain.Answer, error) {
	if sessionID == "" {
		sessionID = "sess-test-1"
	}
	return &domain.Answer{
		Text:      "The delta spans southern Bengal.",
		Sources:   testResults()[:1],
		SessionID: sessionID,
		Model:     "test-model",
	}, nil
}

type mockQueryServiceError struct{}

func (m *mockQueryServiceError) Retrieve(
	_ context.Context,
	_ string,
	_ int,
) (*domain.FusedResultSet, error) {
	return nil, errMock
}

func (m *mockQueryServiceError) Ask(
	_ context.Context,
	_ string,
	_ string,
) (*domain.Answer, error) {
	return nil, errMock
}

// mockIngestService reports canned ingestion outcomes.
type mockIngestService struct{}

func (m *mockIngestService) IngestFile(
	_ context.Context,
	path string,
	lang domain.Language,
) (*domain.Document, error) {
	return &domain.Document{
		ID:         "bn-geography-1a2b",
		Title:      "geography",
		Language:   lang,
		SourcePath: path,
		PageCount:  4,
		ChunkCount: 12,
	}, nil
}

func (m *mockIngestService) ScanIncoming(_ context.Context) error { return nil }
func (m *mockIngestService) Watch(_ context.Context) error        { return nil }
func (m *mockIngestService) Reindex(_ context.Context) error      { return nil }

func (m *mockIngestService) Status(_ context.Context) (*driving.IngestStatus, error) {
	return &driving.IngestStatus{
		Pending:   1,
		Completed: 5,
		Failed:    1,
		Documents: 3,
		Chunks:    52,
	}, nil
}

type mockIngestServiceError struct{}

func (m *mockIngestServiceError) IngestFile(
	_ context.Context,
	_ string,
	_ domain.Language,
) (*domain.Document, error) {
	return nil, errMock
}

func (m *mockIngestServiceError) ScanIncoming(_ context.Context) error { return errMock }
func (m *mockIngestServiceError) Watch(_ context.Context) error        { return errMock }
func (m *mockIngestServiceError) Reindex(_ context.Context) error      { return errMock }

func (m *mockIngestServiceError) Status(_ context.Context) (*driving.IngestStatus, error) {
	return nil, errMock
}

// mockDocumentService serves a two-document corpus.
type mockDocumentService struct{}

func (m *mockDocumentService) List(_ context.Context, lang domain.Language) ([]domain.Document, error) {
	docs := []domain.Document{
		{
			ID:         "en-constitution-4f2a",
			Title:      "constitution",
			Language:   domain.LanguageEnglish,
			SourcePath: "/data/incoming/en/constitution.pdf",
			PageCount:  10,
			ChunkCount: 42,
		},
		{
			ID:         "zh-report-77aa",
			Title:      "report",
			Language:   domain.LanguageChinese,
			SourcePath: "/data/incoming/zh/report.pdf",
			PageCount:  3,
			ChunkCount: 9,
		},
	}
	if lang == "" {
		return docs, nil
	}
	var filtered []domain.Document
	for _, d := range docs {
		if d.Language == lang {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	return &domain.Document{
		ID:         id,
		Title:      "constitution",
		Language:   domain.LanguageEnglish,
		SourcePath: "/data/incoming/en/constitution.pdf",
		PageCount:  10,
		ChunkCount: 42,
		CreatedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
	}, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return "Article 1. The Union and its territory.", nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error { return nil }
func (m *mockDocumentService) Open(_ context.Context, _ string) error   { return nil }

type mockDocumentServiceError struct{}

func (m *mockDocumentServiceError) List(_ context.Context, _ domain.Language) ([]domain.Document, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, errMock
}

func (m *mockDocumentServiceError) GetContent(_ context.Context, _ string) (string, error) {
	return "", errMock
}

func (m *mockDocumentServiceError) Delete(_ context.Context, _ string) error { return errMock }
func (m *mockDocumentServiceError) Open(_ context.Context, _ string) error   { return errMock }

// mockSessionService serves two canned chat sessions.
type mockSessionService struct{}

func (m *mockSessionService) List(_ context.Context, _ int) ([]domain.ChatSession, error) {
	return []domain.ChatSession{
		{
			ID:        "sess-test-1",
			Title:     "What rivers flow through Bengal?",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
		},
		{
			ID:        "sess-test-2",
			Title:     "How does irrigation work?",
			CreatedAt: time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2025, 6, 2, 14, 1, 0, 0, time.UTC),
		},
	}, nil
}

func (m *mockSessionService) Show(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	return []domain.ChatMessage{
		{
			ID:        "msg-1",
			SessionID: sessionID,
			Role:      domain.RoleUser,
			Content:   "What rivers flow through Bengal?",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:        "msg-2",
			SessionID: sessionID,
			Role:      domain.RoleAssistant,
			Content:   "The Ganges and the Brahmaputra.",
			CreatedAt: time.Date(2025, 6, 1, 10, 0, 5, 0, time.UTC),
		},
	}, nil
}

func (m *mockSessionService) Clear(_ context.Context, _ string) error { return nil }

type mockSessionServiceError struct{}

func (m *mockSessionServiceError) List(_ context.Context, _ int) ([]domain.ChatSession, error) {
	return nil, errMock
}

func (m *mockSessionServiceError) Show(_ context.Context, _ string) ([]domain.ChatMessage, error) {
	return nil, errMock
}

func (m *mockSessionServiceError) Clear(_ context.Context, _ string) error { return errMock }

// mockSettingsService serves the default settings.
type mockSettingsService struct{}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()
	return &settings, nil
}

func (m *mockSettingsService) Save(_ *domain.Settings) error  { return nil }
func (m *mockSettingsService) Set(_, _ string) error          { return nil }
func (m *mockSettingsService) SetAPIKeys(_ []string) error    { return nil }
func (m *mockSettingsService) GetDefaults() domain.Settings   { return domain.DefaultSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error       { return nil }

type mockSettingsServiceError struct{}

func (m *mockSettingsServiceError) Get() (*domain.Settings, error) { return nil, errMock }
func (m *mockSettingsServiceError) Save(_ *domain.Settings) error  { return errMock }
func (m *mockSettingsServiceError) Set(_, _ string) error          { return errMock }
func (m *mockSettingsServiceError) SetAPIKeys(_ []string) error    { return errMock }
func (m *mockSettingsServiceError) GetDefaults() domain.Settings   { return domain.DefaultSettings() }
func (m *mockSettingsServiceError) ValidateEmbeddingConfig() error { return errMock }
func (m *mockSettingsServiceError) ValidateLLMConfig() error       { return errMock }

// mockEvalService reports one passing and one failing question.
type mockEvalService struct{}

func (m *mockEvalService) Run(_ context.Context, set *driving.EvalSet) (*driving.EvalReport, error) {
	results := make([]driving.EvalResult, len(set.Questions))
	for i, q := range set.Questions {
		results[i] = driving.EvalResult{
			Question:         q.Text,
			Results:          2,
			MeanRelevance:    0.85,
			HitExpected:      true,
			RetrievalLatency: 40 * time.Millisecond,
		}
	}
	return &driving.EvalReport{
		Set:           set.Name,
		Results:       results,
		MeanRelevance: 0.85,
		HitRate:       1,
		TotalDuration: 120 * time.Millisecond,
	}, nil
}

type mockEvalServiceError struct{}

func (m *mockEvalServiceError) Run(_ context.Context, _ *driving.EvalSet) (*driving.EvalReport, error) {
	return nil, errMock
}
