package vectorstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6334, cfg.Port)
	assert.Equal(t, "recall_chunks", cfg.CollectionName)
	assert.Equal(t, uint64(1024), cfg.DenseSize)
	assert.Equal(t, FusionWeights{Dense: 1, Sparse: 1}, cfg.Weights)
	assert.Equal(t, 60, cfg.RRFConstant)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryBackoff)
}

func TestConfigApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Host:      "qdrant.internal",
		DenseSize: 384,
		Weights:   FusionWeights{Dense: 2, Sparse: 0.5},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, "qdrant.internal", cfg.Host)
	assert.Equal(t, uint64(384), cfg.DenseSize)
	assert.Equal(t, FusionWeights{Dense: 2, Sparse: 0.5}, cfg.Weights)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Host = "" },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "bad collection name",
			mutate:  func(c *Config) { c.CollectionName = "Bad-Name!" },
			wantErr: ErrInvalidCollectionName,
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Weights.Sparse = -1 },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero weight total",
			mutate:  func(c *Config) { c.Weights = FusionWeights{} },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero rrf constant",
			mutate:  func(c *Config) { c.RRFConstant = -5 },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectionName(t *testing.T) {
	assert.NoError(t, ValidateCollectionName("recall_chunks"))
	assert.NoError(t, ValidateCollectionName("c1"))

	assert.Error(t, ValidateCollectionName(""))
	assert.Error(t, ValidateCollectionName("Uppercase"))
	assert.Error(t, ValidateCollectionName("has space"))
	assert.Error(t, ValidateCollectionName("../traversal"))
}

func TestSparseVector(t *testing.T) {
	assert.True(t, SparseVector{}.IsEmpty())
	assert.True(t, SparseVector{Indices: []uint32{1}}.IsEmpty())

	v := SparseVector{Indices: []uint32{1, 2}, Values: []float32{0.5, 0.3}}
	assert.False(t, v.IsEmpty())
	assert.NoError(t, v.Validate())

	bad := SparseVector{Indices: []uint32{1, 2}, Values: []float32{0.5}}
	assert.Error(t, bad.Validate())
}

func TestPayloadRoundTrip(t *testing.T) {
	in := Payload{
		"doc_id":      "doc-1",
		"source":      "file",
		"chunk_index": int64(3),
		"score":       0.75,
		"indexed":     true,
	}
	out := fromQdrantPayload(toQdrantPayload(in))

	assert.Equal(t, "doc-1", out["doc_id"])
	assert.Equal(t, "file", out["source"])
	assert.Equal(t, int64(3), out["chunk_index"])
	assert.Equal(t, 0.75, out["score"])
	assert.Equal(t, true, out["indexed"])
}
