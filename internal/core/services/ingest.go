package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driving"
	"github.com/glossa-labs/glossa-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestOrchestrator = (*IngestService)(nil)

// embedBatchSize is how many chunk texts go into one embedding request.
const embedBatchSize = 64

// settleDelay is how long a file must stay quiet before the watcher
// considers it fully written.
const settleDelay = 1 * time.Second

// IngestService coordinates document ingestion: extraction, cleanup,
// chunking, embedding and indexing. Jobs are tracked in the job store
// so one bad document never blocks the rest of the queue.
type IngestService struct {
	settings domain.Settings
	ocr      driven.OCRService
	pipeline driven.IngestPipeline
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	chunks   driven.ChunkStore
	jobs     driven.JobStore
	sparse   driven.SparseIndex
}

// NewIngestService creates an ingest orchestrator.
// The embedder and vector store are optional - if nil, ingested
// documents are only available to sparse retrieval.
func NewIngestService(
	settings domain.Settings,
	ocr driven.OCRService,
	pipeline driven.IngestPipeline,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	chunks driven.ChunkStore,
	jobs driven.JobStore,
	sparse driven.SparseIndex,
) *IngestService {
	return &IngestService{
		settings: settings,
		ocr:      ocr,
		pipeline: pipeline,
		embedder: embedder,
		vectors:  vectors,
		chunks:   chunks,
		jobs:     jobs,
		sparse:   sparse,
	}
}

// IngestFile processes a single PDF end to end and rebuilds the sparse
// index. Content already in the corpus (same language, name and hash)
// is skipped.
func (s *IngestService) IngestFile(ctx context.Context, path string, lang domain.Language) (*domain.Document, error) {
	if !lang.IsValid() {
		return nil, fmt.Errorf("language %q: %w", lang, domain.ErrInvalidInput)
	}

	docID, err := documentID(path, lang)
	if err != nil {
		return nil, fmt.Errorf("compute document ID: %w", err)
	}

	if existing, err := s.chunks.GetDocument(ctx, docID); err == nil {
		logger.Info("Document %s already ingested, skipping", docID)
		return existing, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing document: %w", err)
	}

	job := &domain.IngestJob{
		ID:         uuid.New().String(),
		DocumentID: docID,
		SourcePath: path,
		Language:   lang,
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	if err := s.jobs.SetStatus(ctx, job.ID, domain.JobProcessing, ""); err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}

	doc, err := s.processFile(ctx, docID, path, lang)
	if err != nil {
		if setErr := s.jobs.SetStatus(ctx, job.ID, domain.JobFailed, err.Error()); setErr != nil {
			logger.Warn("Failed to record job failure: %v", setErr)
		}
		return nil, err
	}
	if err := s.jobs.SetStatus(ctx, job.ID, domain.JobCompleted, ""); err != nil {
		logger.Warn("Failed to record job completion: %v", err)
	}

	if err := s.sparse.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("rebuild sparse index: %w", err)
	}

	return doc, nil
}

// ScanIncoming enqueues every unprocessed PDF under incoming/<lang>/
// and drains the queue. Per-document failures are recorded on their
// jobs; only infrastructure errors fail the scan itself.
func (s *IngestService) ScanIncoming(ctx context.Context) error {
	if err := s.ensureDirs(); err != nil {
		return err
	}

	enqueued := 0
	for _, lang := range domain.AllLanguages() {
		dir := s.incomingDir(lang)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !isPDF(entry.Name()) {
				continue
			}
			path := filepath.Join(dir, entry.Name())

			docID, err := documentID(path, lang)
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				continue
			}
			if _, err := s.chunks.GetDocument(ctx, docID); err == nil {
				logger.Debug("Already ingested: %s", docID)
				continue
			} else if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("check existing document: %w", err)
			}

			job := &domain.IngestJob{
				ID:         uuid.New().String(),
				DocumentID: docID,
				SourcePath: path,
				Language:   lang,
			}
			if err := s.jobs.Enqueue(ctx, job); err != nil {
				return fmt.Errorf("enqueue %s: %w", path, err)
			}
			enqueued++
		}
	}

	logger.Info("Enqueued %d new documents", enqueued)
	return s.drainQueue(ctx)
}

// Watch scans once, then blocks processing files as they appear under
// incoming/<lang>/. Returns when the context is cancelled.
func (s *IngestService) Watch(ctx context.Context) error {
	if err := s.ScanIncoming(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, lang := range domain.AllLanguages() {
		dir := s.incomingDir(lang)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Info("Watching %s", dir)
	}

	// New files settle for a moment before processing so half-written
	// copies are not picked up.
	timers := make(map[string]*time.Timer)
	ready := make(chan string)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isPDF(event.Name) || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if t, exists := timers[event.Name]; exists {
				t.Stop()
			}
			name := event.Name
			timers[name] = time.AfterFunc(settleDelay, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case name := <-ready:
			delete(timers, name)
			s.handleNewFile(ctx, name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Reindex rebuilds the sparse index from the chunk store.
func (s *IngestService) Reindex(ctx context.Context) error {
	if err := s.sparse.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild sparse index: %w", err)
	}
	logger.Info("Sparse index rebuilt: %d chunks", s.sparse.DocCount())
	return nil
}

// Status summarises the job queue and corpus size.
func (s *IngestService) Status(ctx context.Context) (*driving.IngestStatus, error) {
	status := &driving.IngestStatus{}

	counts := []struct {
		status domain.JobStatus
		target *int
	}{
		{domain.JobPending, &status.Pending},
		{domain.JobProcessing, &status.Processing},
		{domain.JobCompleted, &status.Completed},
		{domain.JobFailed, &status.Failed},
	}
	for _, c := range counts {
		jobs, err := s.jobs.List(ctx, c.status, 0)
		if err != nil {
			return nil, fmt.Errorf("list %s jobs: %w", c.status, err)
		}
		*c.target = len(jobs)
	}

	docs, err := s.chunks.ListDocuments(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	status.Documents = len(docs)

	chunkCount, err := s.chunks.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	status.Chunks = chunkCount

	return status, nil
}

// handleNewFile ingests a file reported by the watcher. Failures are
// logged, never propagated; the watcher keeps running.
func (s *IngestService) handleNewFile(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		logger.Warn("File vanished before processing: %s", path)
		return
	}

	lang, ok := domain.ParseLanguage(filepath.Base(filepath.Dir(path)))
	if !ok {
		logger.Warn("Cannot detect language for %s, skipping", path)
		return
	}

	logger.Info("New file: %s (%s)", path, lang)
	if _, err := s.IngestFile(ctx, path, lang); err != nil {
		logger.Warn("Ingest %s failed: %v", path, err)
	}
}

// drainQueue claims pending jobs one at a time until the queue is
// empty, then rebuilds the sparse index if anything was ingested.
func (s *IngestService) drainQueue(ctx context.Context) error {
	processed := 0
	failed := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		job, err := s.jobs.NextPending(ctx)
		if errors.Is(err, domain.ErrJobQueueEmpty) {
			break
		}
		if err != nil {
			return fmt.Errorf("next pending job: %w", err)
		}

		logger.Debug("Processing job %s: %s", job.ID, job.SourcePath)
		if _, err := s.processFile(ctx, job.DocumentID, job.SourcePath, job.Language); err != nil {
			failed++
			logger.Warn("Job %s failed: %v", job.ID, err)
			if setErr := s.jobs.SetStatus(ctx, job.ID, domain.JobFailed, err.Error()); setErr != nil {
				logger.Warn("Failed to record job failure: %v", setErr)
			}
			continue
		}
		processed++
		if err := s.jobs.SetStatus(ctx, job.ID, domain.JobCompleted, ""); err != nil {
			logger.Warn("Failed to record job completion: %v", err)
		}
	}

	if processed > 0 {
		if err := s.sparse.Rebuild(ctx); err != nil {
			return fmt.Errorf("rebuild sparse index: %w", err)
		}
	}

	logger.Info("Ingestion complete: %d processed, %d failed", processed, failed)
	return nil
}

// processFile runs the document pipeline: copy to processing/, extract
// pages, clean and chunk, embed, store.
func (s *IngestService) processFile(ctx context.Context, docID, path string, lang domain.Language) (*domain.Document, error) {
	workPath, err := s.copyToProcessing(path, docID)
	if err != nil {
		return nil, fmt.Errorf("copy to processing: %w", err)
	}

	pages, err := s.ocr.ExtractPages(ctx, workPath, lang)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         docID,
		Title:      fileStem(path),
		Language:   lang,
		SourcePath: path,
		PageCount:  len(pages),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	chunks, err := s.pipeline.Process(ctx, doc, pages)
	if err != nil {
		return nil, fmt.Errorf("process pages: %w", err)
	}
	doc.ChunkCount = len(chunks)

	for i := range chunks {
		chunks[i].Metadata["filename"] = filepath.Base(path)
		chunks[i].Metadata["ingested_at"] = now.Format(time.RFC3339)
	}

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	if s.vectors != nil && s.embedder != nil && len(chunks) > 0 {
		if err := s.vectors.EnsureCollection(ctx, s.embedder.Dimensions()); err != nil {
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
		if err := s.vectors.Upsert(ctx, chunks); err != nil {
			return nil, fmt.Errorf("upsert vectors: %w", err)
		}
	}

	if err := s.chunks.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.chunks.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	logger.Info("Ingested %s: %d pages, %d chunks", docID, len(pages), len(chunks))
	return doc, nil
}

// embedChunks attaches embeddings in batches. A nil embedder leaves
// the chunks sparse-only.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if s.embedder == nil || len(chunks) == 0 {
		return nil
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embed chunks %d-%d: got %d embeddings for %d texts", start, end-1, len(embeddings), len(texts))
		}
		for i, embedding := range embeddings {
			chunks[start+i].Embedding = embedding
		}
	}

	return nil
}

// copyToProcessing copies the source PDF into processing/<docID>.pdf
// so the incoming file stays untouched.
func (s *IngestService) copyToProcessing(path, docID string) (string, error) {
	dir := filepath.Join(s.settings.Ingest.DataDir, "processing")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, docID+".pdf")
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return dest, nil
}

// ensureDirs creates the incoming directory tree.
func (s *IngestService) ensureDirs() error {
	for _, lang := range domain.AllLanguages() {
		if err := os.MkdirAll(s.incomingDir(lang), 0o755); err != nil {
			return fmt.Errorf("create incoming dir: %w", err)
		}
	}
	return nil
}

// incomingDir returns the drop directory for a language.
func (s *IngestService) incomingDir(lang domain.Language) string {
	return filepath.Join(s.settings.Ingest.DataDir, "incoming", lang.String())
}

// documentID derives the stable document identifier from language,
// filename stem and content hash. The same file always produces the
// same ID; edited content produces a new one.
func documentID(path string, lang domain.Language) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	digest := hex.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s_%s_%s", lang, sanitiseStem(fileStem(path)), digest[:8]), nil
}

// fileStem returns the base name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sanitiseStem makes a filename stem safe for use inside IDs.
func sanitiseStem(stem string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isPDF reports whether the filename looks like a PDF.
func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
