package vectorstore

import "errors"

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrConnectionFailed indicates gRPC connection issues.
	ErrConnectionFailed = errors.New("failed to connect to Qdrant")

	// ErrBatchMismatch indicates payloads and vectors of unequal length.
	ErrBatchMismatch = errors.New("payloads and vectors length mismatch")

	// ErrEmptyBatch indicates an upsert with no records.
	ErrEmptyBatch = errors.New("empty upsert batch")

	// ErrEmptyQueryVector indicates a search with an empty dense vector.
	ErrEmptyQueryVector = errors.New("empty dense query vector")

	// ErrDimensionMismatch indicates a dense vector whose length does not
	// match the collection's configured dimensionality.
	ErrDimensionMismatch = errors.New("dense vector dimension mismatch")

	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)

// SparseVector is a lexical vector as (index, value) pairs over an
// unbounded vocabulary. Indices and Values always have equal length.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// IsEmpty reports whether the vector carries no terms.
func (v SparseVector) IsEmpty() bool {
	return len(v.Indices) == 0 || len(v.Values) == 0
}

// Validate checks the equal-length invariant.
func (v SparseVector) Validate() error {
	if len(v.Indices) != len(v.Values) {
		return errors.New("sparse vector indices and values length mismatch")
	}
	return nil
}

// Payload is the metadata stored alongside each point. It must carry
// enough information to build a search hit without a second lookup.
type Payload map[string]any

// ScoredPoint is one ranked search result with its stored payload.
type ScoredPoint struct {
	// ID is the point id (uuid).
	ID string

	// Score is the similarity or fused rank score (higher is better).
	Score float64

	// Payload is the metadata stored with the point.
	Payload Payload
}

// SearchOutcome carries ranked points plus an internal degradation flag.
// The flag never crosses the public API: degraded searches look like
// ordinary (possibly thinner) result lists to callers.
type SearchOutcome struct {
	Points   []ScoredPoint
	Degraded bool
}

// CollectionInfo contains metadata about the hybrid collection.
type CollectionInfo struct {
	Name       string `json:"name"`
	PointCount int    `json:"point_count"`
	DenseSize  int    `json:"dense_size"`
}
