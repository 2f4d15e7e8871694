package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "glossa-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestDocument creates a document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID string, lang domain.Language) {
	t.Helper()
	ctx := context.Background()
	doc := &domain.Document{
		ID:         docID,
		Title:      "Test Document " + docID,
		Language:   lang,
		SourcePath: "/incoming/" + string(lang) + "/" + docID + ".pdf",
		PageCount:  3,
	}
	require.NoError(t, store.ChunkStore().SaveDocument(ctx, doc))
}

// ==================== Store Creation Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "glossa-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, "metadata.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	// Verify database connection is working
	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "glossa-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not fail or re-run applied migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	var version int
	err = store.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, version, 1)
}

// ==================== Chunk Store Tests ====================

func TestChunkStore_SaveAndGetDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := &domain.Document{
		ID:         "en_handbook_ab12cd34",
		Title:      "handbook",
		Language:   domain.LanguageEnglish,
		SourcePath: "/incoming/en/handbook.pdf",
		PageCount:  12,
		ChunkCount: 40,
	}
	require.NoError(t, store.ChunkStore().SaveDocument(ctx, doc))

	got, err := store.ChunkStore().GetDocument(ctx, "en_handbook_ab12cd34")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "handbook", got.Title)
	assert.Equal(t, domain.LanguageEnglish, got.Language)
	assert.Equal(t, 12, got.PageCount)
	assert.Equal(t, 40, got.ChunkCount)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestChunkStore_SaveDocument_Upserts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", Title: "first", Language: domain.LanguageEnglish}
	require.NoError(t, store.ChunkStore().SaveDocument(ctx, doc))

	doc.Title = "second"
	doc.ChunkCount = 7
	require.NoError(t, store.ChunkStore().SaveDocument(ctx, doc))

	got, err := store.ChunkStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, 7, got.ChunkCount)
}

func TestChunkStore_GetDocument_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.ChunkStore().GetDocument(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkStore_SaveAndGetChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", domain.LanguageBengali)

	chunks := []domain.Chunk{
		{
			ID: "doc-1:0001", DocumentID: "doc-1", Content: "second part",
			Page: 1, Position: 1, Language: domain.LanguageBengali,
		},
		{
			ID: "doc-1:0000", DocumentID: "doc-1", Content: "first part",
			Page: 1, Position: 0, Language: domain.LanguageBengali,
			Embedding: []float32{0.1, -0.2, 0.3},
			Metadata:  map[string]any{"scanned": true},
		},
	}
	require.NoError(t, store.ChunkStore().SaveChunks(ctx, chunks))

	got, err := store.ChunkStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Position order, not insertion order.
	assert.Equal(t, "doc-1:0000", got[0].ID)
	assert.Equal(t, "doc-1:0001", got[1].ID)
	assert.Equal(t, []float32{0.1, -0.2, 0.3}, got[0].Embedding)
	assert.Equal(t, true, got[0].Metadata["scanned"])
	assert.Equal(t, domain.LanguageBengali, got[0].Language)
}

func TestChunkStore_GetChunk_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.ChunkStore().GetChunk(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChunkStore_GetChunksByIDs_OrderAndSkips(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", domain.LanguageEnglish)

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "one", Position: 0, Language: domain.LanguageEnglish},
		{ID: "c2", DocumentID: "doc-1", Content: "two", Position: 1, Language: domain.LanguageEnglish},
		{ID: "c3", DocumentID: "doc-1", Content: "three", Position: 2, Language: domain.LanguageEnglish},
	}
	require.NoError(t, store.ChunkStore().SaveChunks(ctx, chunks))

	got, err := store.ChunkStore().GetChunksByIDs(ctx, []string{"c3", "missing", "c1"})
	require.NoError(t, err)

	// Requested order preserved, unknown ID skipped without error.
	require.Len(t, got, 2)
	assert.Equal(t, "c3", got[0].ID)
	assert.Equal(t, "c1", got[1].ID)
}

func TestChunkStore_GetChunksByIDs_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.ChunkStore().GetChunksByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestChunkStore_IterChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", domain.LanguageEnglish)

	require.NoError(t, store.ChunkStore().SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "one", Language: domain.LanguageEnglish},
		{ID: "c2", DocumentID: "doc-1", Content: "two", Language: domain.LanguageEnglish},
	}))

	var seen []string
	err := store.ChunkStore().IterChunks(ctx, func(c domain.Chunk) error {
		seen = append(seen, c.ID)
		return nil
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c2"}, seen)
}

func TestChunkStore_IterChunks_StopsOnError(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", domain.LanguageEnglish)

	require.NoError(t, store.ChunkStore().SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "one", Language: domain.LanguageEnglish},
		{ID: "c2", DocumentID: "doc-1", Content: "two", Language: domain.LanguageEnglish},
	}))

	calls := 0
	err := store.ChunkStore().IterChunks(ctx, func(c domain.Chunk) error {
		calls++
		return assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestChunkStore_DeleteDocument_CascadesChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", domain.LanguageEnglish)

	require.NoError(t, store.ChunkStore().SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "one", Language: domain.LanguageEnglish},
	}))

	require.NoError(t, store.ChunkStore().DeleteDocument(ctx, "doc-1"))

	_, err := store.ChunkStore().GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := store.ChunkStore().CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestChunkStore_ListDocuments_ByLanguage(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-en", domain.LanguageEnglish)
	createTestDocument(t, store, "doc-zh", domain.LanguageChinese)
	createTestDocument(t, store, "doc-ur", domain.LanguageUrdu)

	all, err := store.ChunkStore().ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	chinese, err := store.ChunkStore().ListDocuments(ctx, domain.LanguageChinese)
	require.NoError(t, err)
	require.Len(t, chinese, 1)
	assert.Equal(t, "doc-zh", chinese[0].ID)
}

func TestChunkStore_CountChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", domain.LanguageEnglish)

	count, err := store.ChunkStore().CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.ChunkStore().SaveChunks(ctx, []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "one", Language: domain.LanguageEnglish},
		{ID: "c2", DocumentID: "doc-1", Content: "two", Language: domain.LanguageEnglish},
	}))

	count, err = store.ChunkStore().CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// ==================== Session Store Tests ====================

func TestSessionStore_CreateAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := &domain.ChatSession{ID: "s1", Title: "What is the visa process?"}
	require.NoError(t, store.SessionStore().CreateSession(ctx, session))

	got, err := store.SessionStore().GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "What is the visa process?", got.Title)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSessionStore_CreateSession_RequiresID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.SessionStore().CreateSession(context.Background(), &domain.ChatSession{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionStore_GetSession_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.SessionStore().GetSession(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_AddMessage_BumpsSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := &domain.ChatSession{ID: "s1", Title: "t", CreatedAt: base, UpdatedAt: base}
	require.NoError(t, store.SessionStore().CreateSession(ctx, session))

	msg := &domain.ChatMessage{
		ID: "m1", SessionID: "s1", Role: domain.RoleUser,
		Content: "hello", CreatedAt: base.Add(time.Hour),
	}
	require.NoError(t, store.SessionStore().AddMessage(ctx, msg))

	got, err := store.SessionStore().GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestSessionStore_Messages_ChronologicalWithLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SessionStore().CreateSession(ctx, &domain.ChatSession{ID: "s1", Title: "t"}))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := &domain.ChatMessage{
			ID:        fmt.Sprintf("m%d", i),
			SessionID: "s1",
			Role:      domain.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.SessionStore().AddMessage(ctx, msg))
	}

	// Limit keeps the most recent messages, returned oldest first.
	got, err := store.SessionStore().Messages(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].ID)
	assert.Equal(t, "m3", got[1].ID)
	assert.Equal(t, "m4", got[2].ID)

	all, err := store.SessionStore().Messages(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, domain.RoleUser, all[0].Role)
}

func TestSessionStore_RecentSessions_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		session := &domain.ChatSession{
			ID: id, Title: id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.SessionStore().CreateSession(ctx, session))
	}

	got, err := store.SessionStore().RecentSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
}

func TestSessionStore_DeleteSession_CascadesMessages(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SessionStore().CreateSession(ctx, &domain.ChatSession{ID: "s1", Title: "t"}))
	require.NoError(t, store.SessionStore().AddMessage(ctx, &domain.ChatMessage{
		ID: "m1", SessionID: "s1", Role: domain.RoleUser, Content: "hello",
	}))

	require.NoError(t, store.SessionStore().DeleteSession(ctx, "s1"))

	_, err := store.SessionStore().GetSession(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	msgs, err := store.SessionStore().Messages(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSessionStore_DeleteSession_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.SessionStore().DeleteSession(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Job Store Tests ====================

func TestJobStore_EnqueueAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	job := &domain.IngestJob{
		ID:         "j1",
		DocumentID: "ur_guide_deadbeef",
		SourcePath: "/incoming/ur/guide.pdf",
		Language:   domain.LanguageUrdu,
	}
	require.NoError(t, store.JobStore().Enqueue(ctx, job))

	got, err := store.JobStore().Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, got.Status)
	assert.Equal(t, domain.LanguageUrdu, got.Language)
	assert.Equal(t, "/incoming/ur/guide.pdf", got.SourcePath)
}

func TestJobStore_NextPending_ClaimsOldest(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"j1", "j2"} {
		job := &domain.IngestJob{
			ID: id, DocumentID: "d" + id, SourcePath: "/tmp/" + id,
			Language: domain.LanguageEnglish, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, store.JobStore().Enqueue(ctx, job))
	}

	claimed, err := store.JobStore().NextPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "j1", claimed.ID)
	assert.Equal(t, domain.JobProcessing, claimed.Status)

	// Claimed job no longer comes back as pending.
	next, err := store.JobStore().NextPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, "j2", next.ID)
}

func TestJobStore_NextPending_EmptyQueue(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.JobStore().NextPending(context.Background())

	assert.ErrorIs(t, err, domain.ErrJobQueueEmpty)
}

func TestJobStore_SetStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.JobStore().Enqueue(ctx, &domain.IngestJob{
		ID: "j1", DocumentID: "d1", SourcePath: "/tmp/a.pdf", Language: domain.LanguageHindi,
	}))

	require.NoError(t, store.JobStore().SetStatus(ctx, "j1", domain.JobFailed, "ocr failed"))

	got, err := store.JobStore().Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, got.Status)
	assert.Equal(t, "ocr failed", got.Error)

	// Moving out of failed clears the error message.
	require.NoError(t, store.JobStore().SetStatus(ctx, "j1", domain.JobPending, "stale"))
	got, err = store.JobStore().Get(ctx, "j1")
	require.NoError(t, err)
	assert.Empty(t, got.Error)
}

func TestJobStore_SetStatus_Validation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	err := store.JobStore().SetStatus(ctx, "j1", domain.JobStatus("bogus"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.JobStore().SetStatus(ctx, "missing", domain.JobCompleted, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_List_ByStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"j1", "j2", "j3"} {
		require.NoError(t, store.JobStore().Enqueue(ctx, &domain.IngestJob{
			ID: id, DocumentID: "d" + id, SourcePath: "/tmp/" + id,
			Language: domain.LanguageEnglish, CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.JobStore().SetStatus(ctx, "j2", domain.JobCompleted, ""))

	pending, err := store.JobStore().List(ctx, domain.JobPending, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// Newest first.
	assert.Equal(t, "j3", pending[0].ID)
	assert.Equal(t, "j1", pending[1].ID)

	all, err := store.JobStore().List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
