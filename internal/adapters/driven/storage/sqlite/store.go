package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/glossa-labs/glossa-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.glossa/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".glossa", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// JobStore returns a JobStore interface backed by this store.
func (s *Store) JobStore() driven.JobStore {
	return &jobStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveDocument stores or updates a document.
func (s *chunkStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, language, source_path, page_count, chunk_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			language = excluded.language,
			source_path = excluded.source_path,
			page_count = excluded.page_count,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, string(doc.Language), doc.SourcePath,
		doc.PageCount, doc.ChunkCount, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document.
func (s *chunkStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, page, position, language, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			page = excluded.page,
			position = excluded.position,
			language = excluded.language,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.Page, chunk.Position, string(chunk.Language),
			embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *chunkStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, language, source_path, page_count, chunk_count, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, content, page, position, language, embedding, metadata
		FROM chunks WHERE id = ?
	`, id)

	chunk, err := scanChunk(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return chunk, nil
}

// GetChunksByIDs retrieves chunks in the order of the given IDs.
// Unknown IDs are skipped silently.
func (s *chunkStore) GetChunksByIDs(ctx context.Context, ids []string) ([]domain.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, page, position, language, embedding, metadata
		FROM chunks WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Chunk, len(ids))
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[chunk.ID] = *chunk
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	ordered := make([]domain.Chunk, 0, len(byID))
	for _, id := range ids {
		if chunk, ok := byID[id]; ok {
			ordered = append(ordered, chunk)
		}
	}
	return ordered, nil
}

// GetChunks retrieves all chunks for a document, in position order.
func (s *chunkStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, page, position, language, embedding, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// IterChunks streams every stored chunk to fn.
func (s *chunkStore) IterChunks(ctx context.Context, fn func(domain.Chunk) error) error {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, page, position, language, embedding, metadata
		FROM chunks
	`)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return err
		}
		if err := fn(*chunk); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating chunks: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and its chunks.
func (s *chunkStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents, optionally restricted to a language.
func (s *chunkStore) ListDocuments(ctx context.Context, lang domain.Language) ([]domain.Document, error) {
	query := `
		SELECT id, title, language, source_path, page_count, chunk_count, created_at, updated_at
		FROM documents
	`
	var args []any
	if lang != "" {
		query += " WHERE language = ?"
		args = append(args, string(lang))
	}
	query += " ORDER BY id"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// CountChunks returns the total number of stored chunks.
func (s *chunkStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// CreateSession stores a new session.
func (s *sessionStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.Title, session.CreatedAt, session.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *sessionStore) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)

	var session domain.ChatSession
	if err := row.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &session, nil
}

// AddMessage appends a message and bumps the session's updated time.
func (s *sessionStore) AddMessage(ctx context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" || msg.SessionID == "" {
		return domain.ErrInvalidInput
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, string(msg.Role), msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("adding message: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE sessions SET updated_at = ? WHERE id = ?", msg.CreatedAt, msg.SessionID)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Messages returns the most recent messages in chronological order.
func (s *sessionStore) Messages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.ChatMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.ChatMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.ChatRole(role)
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	// Query returned newest first; flip to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// RecentSessions lists sessions by last activity, newest first.
func (s *sessionStore) RecentSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	query := `
		SELECT id, title, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		var session domain.ChatSession
		if err := rows.Scan(&session.ID, &session.Title, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// DeleteSession removes a session and its messages.
func (s *sessionStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Job Store ====================

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

// Enqueue stores a new pending job.
func (s *jobStore) Enqueue(ctx context.Context, job *domain.IngestJob) error {
	if job.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = domain.JobPending
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_jobs (id, document_id, source_path, language, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.DocumentID, job.SourcePath, string(job.Language),
		string(job.Status), job.Error, job.CreatedAt, job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}
	return nil
}

// NextPending claims the oldest pending job and marks it processing.
func (s *jobStore) NextPending(ctx context.Context) (*domain.IngestJob, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx, `
		SELECT id, document_id, source_path, language, status, error, created_at, updated_at
		FROM ingest_jobs WHERE status = ?
		ORDER BY created_at, id
		LIMIT 1
	`, string(domain.JobPending))

	job, err := scanJob(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobQueueEmpty
		}
		return nil, err
	}

	job.Status = domain.JobProcessing
	job.UpdatedAt = time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		"UPDATE ingest_jobs SET status = ?, updated_at = ? WHERE id = ?",
		string(job.Status), job.UpdatedAt, job.ID)
	if err != nil {
		return nil, fmt.Errorf("claiming job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return job, nil
}

// SetStatus updates a job's lifecycle state.
func (s *jobStore) SetStatus(ctx context.Context, id string, status domain.JobStatus, errMsg string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: unknown job status %q", domain.ErrInvalidInput, status)
	}
	if status != domain.JobFailed {
		errMsg = ""
	}

	result, err := s.store.db.ExecContext(ctx,
		"UPDATE ingest_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		string(status), errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating job status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves a job by ID.
func (s *jobStore) Get(ctx context.Context, id string) (*domain.IngestJob, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, source_path, language, status, error, created_at, updated_at
		FROM ingest_jobs WHERE id = ?
	`, id)

	job, err := scanJob(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

// List returns jobs newest first, optionally restricted to a status.
func (s *jobStore) List(ctx context.Context, status domain.JobStatus, limit int) ([]domain.IngestJob, error) {
	query := `
		SELECT id, document_id, source_path, language, status, error, created_at, updated_at
		FROM ingest_jobs
	`
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IngestJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}

	return jobs, nil
}

// ==================== Helper Functions ====================

// scanFunc abstracts over *sql.Row and *sql.Rows scanning.
type scanFunc func(dest ...any) error

// scanDocument scans a single document row.
func scanDocument(scan scanFunc) (*domain.Document, error) {
	var doc domain.Document
	var lang string

	if err := scan(&doc.ID, &doc.Title, &lang, &doc.SourcePath,
		&doc.PageCount, &doc.ChunkCount, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Language = domain.Language(lang)
	return &doc, nil
}

// scanChunk scans a single chunk row.
func scanChunk(scan scanFunc) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var lang string
	var embeddingBlob []byte
	var metadataJSON sql.NullString

	if err := scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
		&chunk.Page, &chunk.Position, &lang, &embeddingBlob, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Language = domain.Language(lang)
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// scanJob scans a single job row.
func scanJob(scan scanFunc) (*domain.IngestJob, error) {
	var job domain.IngestJob
	var lang, status string

	if err := scan(&job.ID, &job.DocumentID, &job.SourcePath, &lang,
		&status, &job.Error, &job.CreatedAt, &job.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	job.Language = domain.Language(lang)
	job.Status = domain.JobStatus(status)
	return &job, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
