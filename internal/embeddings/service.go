// Package embeddings provides dense+sparse embedding generation via an
// HTTP embedding server.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidemarklabs/recall/internal/vectorstore"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Encoding is the dual-vector representation of one text: a fixed-length
// dense embedding plus sparse lexical weights.
type Encoding struct {
	Dense  []float32
	Sparse vectorstore.SparseVector
}

// Encoder produces dual-vector encodings for documents and queries.
//
// Some models optimize differently for queries vs documents, so the two
// are separate methods even when an implementation treats them the same.
type Encoder interface {
	EncodeDocuments(ctx context.Context, texts []string) ([]Encoding, error)
	EncodeQueries(ctx context.Context, texts []string) ([]Encoding, error)
}

// Config holds configuration for the embedding service.
type Config struct {
	// BaseURL is the base URL of the embedding server.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model identifier.
	Model string `koanf:"model"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `koanf:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080"
	}
	if c.Model == "" {
		c.Model = "BAAI/bge-m3"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	return nil
}

// Service is an Encoder backed by an HTTP embedding server that returns
// dense vectors and sparse lexical token weights per input.
type Service struct {
	config Config
	client *http.Client
}

// NewService creates a new embedding service with the given configuration.
func NewService(config Config) (*Service, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &Service{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

// encodeRequest is the request body for the encode endpoints.
type encodeRequest struct {
	Inputs   []string `json:"inputs"`
	Model    string   `json:"model,omitempty"`
	Truncate bool     `json:"truncate"`
}

// encodeResponse mirrors the server's dual-vector output. Sparse lexical
// weights arrive as token-id to weight maps, one per input.
type encodeResponse struct {
	Dense  [][]float32          `json:"dense_vectors"`
	Sparse []map[string]float32 `json:"sparse_lexical_weights"`
}

// EncodeDocuments generates dual-vector encodings for document texts.
func (s *Service) EncodeDocuments(ctx context.Context, texts []string) ([]Encoding, error) {
	return s.encode(ctx, "/encode_documents", texts)
}

// EncodeQueries generates dual-vector encodings for query texts.
func (s *Service) EncodeQueries(ctx context.Context, texts []string) ([]Encoding, error) {
	return s.encode(ctx, "/encode_queries", texts)
}

func (s *Service) encode(ctx context.Context, path string, texts []string) ([]Encoding, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	body, err := json.Marshal(encodeRequest{
		Inputs:   texts,
		Model:    s.config.Model,
		Truncate: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var decoded encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(decoded.Dense) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d dense vectors, got %d",
			ErrEmbeddingFailed, len(texts), len(decoded.Dense))
	}

	encodings := make([]Encoding, len(texts))
	for i := range texts {
		encodings[i].Dense = decoded.Dense[i]
		if i < len(decoded.Sparse) {
			sparse, err := ConvertLexicalWeights(decoded.Sparse[i])
			if err != nil {
				return nil, fmt.Errorf("converting sparse weights for input %d: %w", i, err)
			}
			encodings[i].Sparse = sparse
		}
	}
	return encodings, nil
}
