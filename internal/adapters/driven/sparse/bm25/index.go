// Package bm25 provides an in-process BM25 keyword index over the chunk
// store. The index is derived state: Rebuild scans every stored chunk and
// publishes an immutable snapshot, so searches never block ingestion.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/glossa-labs/glossa-cli/internal/core/domain"
	"github.com/glossa-labs/glossa-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.SparseIndex = (*Index)(nil)

// Default BM25 parameters. k1 controls term-frequency saturation, b
// controls document-length normalisation.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Config holds BM25 tuning parameters.
type Config struct {
	// K1 is the term-frequency saturation parameter.
	K1 float64

	// B is the length normalisation parameter.
	B float64
}

// applyDefaults fills in zero values with defaults.
func (c *Config) applyDefaults() {
	if c.K1 <= 0 {
		c.K1 = DefaultK1
	}
	if c.B <= 0 {
		c.B = DefaultB
	}
}

// Index is a BM25 keyword index rebuilt from the chunk store.
// A snapshot is immutable once published; Rebuild swaps in a fresh one
// atomically while concurrent searches keep reading the old snapshot.
type Index struct {
	chunks   driven.ChunkStore
	k1       float64
	b        float64
	snapshot atomic.Pointer[snapshot]
}

// snapshot is one immutable build of the index.
type snapshot struct {
	docs      []indexedChunk
	idf       map[string]float64
	avgDocLen float64
}

// indexedChunk holds the per-chunk state needed for scoring and
// filtering. Content is not retained; hydration happens elsewhere.
type indexedChunk struct {
	meta   domain.Chunk
	terms  map[string]int
	length int
}

// New creates a BM25 index backed by the given chunk store.
// The index starts empty; call Rebuild before searching.
func New(chunks driven.ChunkStore, cfg Config) *Index {
	cfg.applyDefaults()
	return &Index{
		chunks: chunks,
		k1:     cfg.K1,
		b:      cfg.B,
	}
}

// Rebuild scans the chunk store and publishes a fresh snapshot.
func (i *Index) Rebuild(ctx context.Context) error {
	var (
		docs     []indexedChunk
		docFreq  = make(map[string]int)
		totalLen int
	)

	err := i.chunks.IterChunks(ctx, func(c domain.Chunk) error {
		tokens := Tokenise(c.Content)
		terms := make(map[string]int, len(tokens))
		for _, t := range tokens {
			terms[t]++
		}
		// Each term counts once per chunk for document frequency.
		for t := range terms {
			docFreq[t]++
		}
		docs = append(docs, indexedChunk{
			meta: domain.Chunk{
				ID:         c.ID,
				DocumentID: c.DocumentID,
				Page:       c.Page,
				Language:   c.Language,
			},
			terms:  terms,
			length: len(tokens),
		})
		totalLen += len(tokens)
		return nil
	})
	if err != nil {
		return err
	}

	snap := &snapshot{
		docs: docs,
		idf:  make(map[string]float64, len(docFreq)),
	}
	if len(docs) > 0 {
		snap.avgDocLen = float64(totalLen) / float64(len(docs))
	}
	n := float64(len(docs))
	for term, df := range docFreq {
		snap.idf[term] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}

	i.snapshot.Store(snap)
	return nil
}

// Search scores every chunk passing the filter against the query and
// returns the top results by BM25 score descending.
func (i *Index) Search(ctx context.Context, query string, filter domain.Filter, limit int) ([]driven.SparseHit, error) {
	snap := i.snapshot.Load()
	if snap == nil {
		return nil, domain.ErrSparseIndexEmpty
	}
	if limit <= 0 {
		return nil, nil
	}

	tokens := Tokenise(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	hits := make([]driven.SparseHit, 0, limit)
	for idx := range snap.docs {
		doc := &snap.docs[idx]
		if !filter.Matches(doc.meta) {
			continue
		}
		score := i.score(snap, doc, tokens)
		if score > 0 {
			hits = append(hits, driven.SparseHit{ChunkID: doc.meta.ID, Score: score})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// score computes the BM25 score of one chunk for the query tokens.
func (i *Index) score(snap *snapshot, doc *indexedChunk, tokens []string) float64 {
	var score float64
	docLen := float64(doc.length)
	for _, t := range tokens {
		tf := float64(doc.terms[t])
		if tf == 0 {
			continue
		}
		idf := snap.idf[t]
		score += idf * (tf * (i.k1 + 1)) / (tf + i.k1*(1-i.b+i.b*docLen/snap.avgDocLen))
	}
	return score
}

// DocCount returns the chunk count of the current snapshot.
func (i *Index) DocCount() int {
	snap := i.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.docs)
}

// Close drops the current snapshot.
func (i *Index) Close() error {
	i.snapshot.Store(nil)
	return nil
}

// Tokenise splits text into lower-cased terms. Runs of letters, digits
// and combining marks form one term each; the marks matter for Bengali,
// Hindi and Urdu, whose vowel signs are not letters. Han runes are
// emitted as single-rune terms, because Chinese text carries no word
// delimiters; unigram matching keeps keyword search usable without a
// segmenter.
func Tokenise(text string) []string {
	var (
		tokens []string
		sb     strings.Builder
	)
	flush := func() {
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			sb.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}
