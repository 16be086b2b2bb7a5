// Package engine wires chunking, encoding, storage, and retrieval into the
// caller-facing recall API.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tidemarklabs/recall/internal/chunker"
	"github.com/tidemarklabs/recall/internal/embeddings"
	"github.com/tidemarklabs/recall/internal/keywords"
	"github.com/tidemarklabs/recall/internal/metastore"
	"github.com/tidemarklabs/recall/internal/retrieval"
	"github.com/tidemarklabs/recall/internal/vectorstore"
)

// ErrNoDocuments indicates an indexing call with nothing to index.
var ErrNoDocuments = errors.New("no documents to index")

// Document is a unit of content submitted for indexing.
type Document struct {
	// ID identifies the document across chunks and re-indexing runs.
	ID string

	// Source classifies where the content came from.
	Source retrieval.Source

	// Location is the filesystem path or URL of the document.
	Location string

	// Timestamp is when the content was captured. Zero means now.
	Timestamp time.Time

	// Text is the raw content to chunk and index.
	Text string
}

// VectorWriter is the vector store surface the engine indexes into.
type VectorWriter interface {
	Upsert(ctx context.Context, payloads []vectorstore.Payload, dense [][]float32, sparse []vectorstore.SparseVector) error
	Delete(ctx context.Context, docIDs []string) error
}

// HitSearcher is the retrieval surface the engine queries.
type HitSearcher interface {
	SearchHybrid(ctx context.Context, dense []float32, sparse vectorstore.SparseVector, limit int, sourceFilter retrieval.Source, filters map[string]any) ([]retrieval.Hit, error)
	ResolveMetadata(ctx context.Context, hit retrieval.Hit) retrieval.Hit
}

// MetadataWriter records file-backed document metadata for later resolution.
type MetadataWriter interface {
	Upsert(ctx context.Context, rec metastore.FileRecord) error
	Delete(ctx context.Context, docID string) error
}

// Engine is the top-level retrieval and personalization API.
type Engine struct {
	splitter *chunker.Splitter
	encoder  embeddings.Encoder
	vectors  VectorWriter
	repo     HitSearcher
	meta     MetadataWriter
	logger   *zap.Logger
}

// New creates an Engine from its collaborators. meta may be nil when no
// local metadata store is configured.
func New(splitter *chunker.Splitter, encoder embeddings.Encoder, vectors VectorWriter, repo HitSearcher, meta MetadataWriter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		splitter: splitter,
		encoder:  encoder,
		vectors:  vectors,
		repo:     repo,
		meta:     meta,
		logger:   logger.Named("engine"),
	}
}

// Index chunks, encodes, and stores the given documents. File-backed
// documents also get a metadata record so later hits resolve to the current
// path and timestamp. Documents producing no chunks are skipped.
func (e *Engine) Index(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	var (
		payloads []vectorstore.Payload
		texts    []string
		pending  []metastore.FileRecord
	)
	for _, doc := range docs {
		if doc.ID == "" {
			return errors.New("document id required")
		}
		if !doc.Source.Valid() {
			return fmt.Errorf("document %s: unknown source %q", doc.ID, doc.Source)
		}

		ts := doc.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		chunks := e.splitter.SplitDocument(doc.ID, doc.Text)
		if len(chunks) == 0 {
			e.logger.Debug("document produced no chunks, skipping",
				zap.String("doc_id", doc.ID))
			continue
		}

		for _, ch := range chunks {
			texts = append(texts, ch.Text)
			payloads = append(payloads, vectorstore.Payload{
				"doc_id":      doc.ID,
				"source":      string(doc.Source),
				"path":        doc.Location,
				"timestamp":   ts.Unix(),
				"snippet":     ch.Snippet,
				"content":     ch.Text,
				"chunk_index": int64(ch.Index),
			})
		}

		if doc.Source == retrieval.SourceFile && e.meta != nil {
			pending = append(pending, metastore.FileRecord{
				DocID:     doc.ID,
				Path:      doc.Location,
				UpdatedAt: ts,
				Preview:   chunks[0].Snippet,
			})
		}
	}

	if len(texts) == 0 {
		return ErrNoDocuments
	}

	encodings, err := e.encoder.EncodeDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	if len(encodings) != len(texts) {
		return fmt.Errorf("encoder returned %d encodings for %d chunks", len(encodings), len(texts))
	}

	dense := make([][]float32, len(encodings))
	sparse := make([]vectorstore.SparseVector, len(encodings))
	for i, enc := range encodings {
		dense[i] = enc.Dense
		sparse[i] = enc.Sparse
	}

	if err := e.vectors.Upsert(ctx, payloads, dense, sparse); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}

	// Metadata is written only after the vector batch commits, so a failed
	// index run leaves no records pointing at vectors that were never
	// stored.
	for _, rec := range pending {
		if err := e.meta.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("recording metadata for %s: %w", rec.DocID, err)
		}
	}

	e.logger.Info("indexed documents",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(texts)))
	return nil
}

// Search encodes the query and runs hybrid retrieval, resolving each hit's
// metadata. It degrades rather than fails: any error along the way yields an
// empty result with a warning log.
func (e *Engine) Search(ctx context.Context, query string, limit int, sourceFilter retrieval.Source, filters map[string]any) []retrieval.Hit {
	if query == "" || limit <= 0 {
		return []retrieval.Hit{}
	}

	encodings, err := e.encoder.EncodeQueries(ctx, []string{query})
	if err != nil || len(encodings) != 1 {
		e.logger.Warn("query encoding failed, returning empty result",
			zap.Error(err))
		return []retrieval.Hit{}
	}
	enc := encodings[0]

	hits, err := e.repo.SearchHybrid(ctx, enc.Dense, enc.Sparse, limit, sourceFilter, filters)
	if err != nil {
		e.logger.Warn("hybrid search failed, returning empty result",
			zap.Error(err))
		return []retrieval.Hit{}
	}

	resolved := make([]retrieval.Hit, 0, len(hits))
	for _, hit := range hits {
		resolved = append(resolved, e.repo.ResolveMetadata(ctx, hit))
	}
	return resolved
}

// Remove deletes a document's chunks from the vector store and its metadata
// record if one exists.
func (e *Engine) Remove(ctx context.Context, docID string) error {
	if docID == "" {
		return errors.New("doc id required")
	}
	if err := e.vectors.Delete(ctx, []string{docID}); err != nil {
		return fmt.Errorf("deleting vectors for %s: %w", docID, err)
	}
	if e.meta != nil {
		if err := e.meta.Delete(ctx, docID); err != nil {
			return fmt.Errorf("deleting metadata for %s: %w", docID, err)
		}
	}
	return nil
}

// RecommendKeywords extracts interest-weighted keywords from recent activity
// documents, ranked against the user's interest profile.
func (e *Engine) RecommendKeywords(activityDocs, profile []string, topN int) []string {
	return keywords.Select(activityDocs, profile, topN)
}
