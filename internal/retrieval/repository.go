// Package retrieval composes vector store hits with relational metadata
// into unified search results.
package retrieval

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tidemarklabs/recall/internal/chunker"
	"github.com/tidemarklabs/recall/internal/metastore"
	"github.com/tidemarklabs/recall/internal/vectorstore"
)

// Payload keys stored with every vector point. Together they reconstruct a
// Hit without a second lookup.
const (
	payloadDocID      = "doc_id"
	payloadSource     = "source"
	payloadPath       = "path"
	payloadTimestamp  = "timestamp"
	payloadSnippet    = "snippet"
	payloadContent    = "content"
	payloadChunkIndex = "chunk_index"
)

// Hit is one ranked retrieval result with resolved metadata. Hits are
// transient: constructed per query, never persisted.
type Hit struct {
	DocID     string    `json:"doc_id"`
	Score     float64   `json:"score"`
	Source    Source    `json:"source"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Snippet   string    `json:"snippet"`
	Content   string    `json:"content,omitempty"`
}

// VectorSearcher is the slice of the vector store client the repository
// uses.
type VectorSearcher interface {
	HybridSearch(ctx context.Context, dense []float32, sparse vectorstore.SparseVector, limit int, filters map[string]any) (vectorstore.SearchOutcome, error)
}

// MetadataLookup reads relational file metadata by document id.
type MetadataLookup interface {
	Get(ctx context.Context, docID string) (*metastore.FileRecord, error)
}

// Repository bridges vector store hits and relational metadata.
type Repository struct {
	vectors VectorSearcher
	meta    MetadataLookup
	logger  *zap.Logger
}

// NewRepository creates a Repository. meta may be nil, in which case file
// hits keep their payload metadata as-is.
func NewRepository(vectors VectorSearcher, meta MetadataLookup, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		vectors: vectors,
		meta:    meta,
		logger:  logger.Named("retrieval"),
	}
}

// SearchHybrid runs a hybrid search and builds ranked hits from point
// payloads. sourceFilter, when set, discards non-matching hits client-side:
// legacy points may predate the source payload index, so the store-side
// filter cannot be trusted alone.
func (r *Repository) SearchHybrid(ctx context.Context, dense []float32, sparse vectorstore.SparseVector, limit int, sourceFilter Source, filters map[string]any) ([]Hit, error) {
	outcome, err := r.vectors.HybridSearch(ctx, dense, sparse, limit, filters)
	if err != nil {
		if errors.Is(err, vectorstore.ErrEmptyQueryVector) {
			// Malformed query vectors yield an empty result, not a failure.
			return []Hit{}, nil
		}
		return nil, err
	}
	if outcome.Degraded {
		r.logger.Warn("search result is degraded (dense-only)")
	}

	hits := make([]Hit, 0, len(outcome.Points))
	for _, p := range outcome.Points {
		hit, ok := r.hitFromPoint(p)
		if !ok {
			continue
		}
		if sourceFilter != "" && hit.Source != sourceFilter {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// hitFromPoint builds a Hit from a point payload. Points without a valid
// doc_id or source are dropped as unrenderable.
func (r *Repository) hitFromPoint(p vectorstore.ScoredPoint) (Hit, bool) {
	docID, _ := p.Payload[payloadDocID].(string)
	if docID == "" {
		r.logger.Debug("dropping point without doc_id", zap.String("point_id", p.ID))
		return Hit{}, false
	}

	rawSource, _ := p.Payload[payloadSource].(string)
	source, err := ParseSource(rawSource)
	if err != nil {
		r.logger.Debug("dropping point with unknown source",
			zap.String("point_id", p.ID), zap.String("source", rawSource))
		return Hit{}, false
	}

	hit := Hit{
		DocID:  docID,
		Score:  p.Score,
		Source: source,
	}
	hit.Path, _ = p.Payload[payloadPath].(string)
	if ts, ok := p.Payload[payloadTimestamp].(int64); ok {
		hit.Timestamp = time.Unix(ts, 0).UTC()
	}
	hit.Content, _ = p.Payload[payloadContent].(string)

	if snippet, ok := p.Payload[payloadSnippet].(string); ok && snippet != "" {
		hit.Snippet = snippet
	} else if hit.Content != "" {
		// Older points stored content without a snippet.
		hit.Snippet = chunker.Snippet(hit.Content)
	}
	return hit, true
}

// ResolveMetadata refreshes a hit's metadata from the authoritative store
// for its source variant. Each variant has its own resolver; new variants
// must add a branch here rather than relying on a silent default.
func (r *Repository) ResolveMetadata(ctx context.Context, hit Hit) Hit {
	switch hit.Source {
	case SourceFile:
		return r.resolveFile(ctx, hit)
	case SourceWeb:
		return r.resolveWeb(hit)
	case SourceScreen:
		return r.resolveScreen(hit)
	default:
		// hitFromPoint validates sources, so this is unreachable for
		// repository-built hits; keep caller-built hits intact.
		r.logger.Warn("no resolver for source", zap.String("source", string(hit.Source)))
		return hit
	}
}

// resolveFile overwrites path and timestamp from the relational store.
// The relational record is authoritative over stale vector payloads for
// files, which move and change after indexing.
func (r *Repository) resolveFile(ctx context.Context, hit Hit) Hit {
	if r.meta == nil {
		return hit
	}
	rec, err := r.meta.Get(ctx, hit.DocID)
	if err != nil {
		if !errors.Is(err, metastore.ErrNotFound) {
			r.logger.Warn("metadata lookup failed", zap.String("doc_id", hit.DocID), zap.Error(err))
		}
		return hit
	}
	hit.Path = rec.Path
	hit.Timestamp = rec.UpdatedAt
	if hit.Snippet == "" && rec.Preview != "" {
		hit.Snippet = rec.Preview
	}
	return hit
}

// resolveWeb keeps the payload metadata: URLs do not go stale the way
// file paths do.
func (r *Repository) resolveWeb(hit Hit) Hit {
	return hit
}

// resolveScreen keeps the payload metadata: captures are immutable.
func (r *Repository) resolveScreen(hit Hit) Hit {
	return hit
}
