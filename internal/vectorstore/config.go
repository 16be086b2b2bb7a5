package vectorstore

import (
	"fmt"
	"regexp"
	"time"
)

// collectionNamePattern validates collection names.
// Pattern: lowercase letters, numbers, underscores, 1-64 characters.
var collectionNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// Named vector spaces of the hybrid collection.
const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

// FusionWeights scales each vector space's contribution to the fused rank
// score. The weights need not sum to one; any positive total works.
type FusionWeights struct {
	Dense  float64 `koanf:"dense"`
	Sparse float64 `koanf:"sparse"`
}

// Config holds configuration for the Qdrant-backed hybrid store.
type Config struct {
	// Host is the Qdrant server hostname or IP address.
	Host string `koanf:"host"`

	// Port is the Qdrant gRPC port (6334 by default, not the HTTP 6333).
	Port int `koanf:"port"`

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool `koanf:"use_tls"`

	// CollectionName is the hybrid collection operated on.
	CollectionName string `koanf:"collection_name"`

	// DenseSize is the dense embedding dimensionality. Must match the
	// embedder output; validated on every upsert.
	DenseSize uint64 `koanf:"dense_size"`

	// Weights scales dense vs sparse contributions during rank fusion.
	Weights FusionWeights `koanf:"weights"`

	// RRFConstant is the k in the 1/(k + rank + 1) fusion term. The
	// default of 60 is a tuning decision carried as configuration.
	RRFConstant int `koanf:"rrf_constant"`

	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `koanf:"max_retries"`

	// RetryBackoff is the initial backoff, doubled per retry.
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// MaxMessageSize is the maximum gRPC message size in bytes.
	MaxMessageSize int `koanf:"max_message_size"`

	// CircuitBreakerThreshold is the failure count that opens the circuit.
	CircuitBreakerThreshold int `koanf:"circuit_breaker_threshold"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.CollectionName == "" {
		c.CollectionName = "recall_chunks"
	}
	if c.DenseSize == 0 {
		c.DenseSize = 1024
	}
	if c.Weights.Dense == 0 && c.Weights.Sparse == 0 {
		c.Weights = FusionWeights{Dense: 1, Sparse: 1}
	}
	if c.RRFConstant == 0 {
		c.RRFConstant = 60
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = 50 * 1024 * 1024 // 50MB
	}
	if c.CircuitBreakerThreshold == 0 {
		c.CircuitBreakerThreshold = 5
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port: %d", ErrInvalidConfig, c.Port)
	}
	if err := ValidateCollectionName(c.CollectionName); err != nil {
		return err
	}
	if c.DenseSize == 0 {
		return fmt.Errorf("%w: dense size required", ErrInvalidConfig)
	}
	if c.Weights.Dense < 0 || c.Weights.Sparse < 0 {
		return fmt.Errorf("%w: fusion weights must be non-negative", ErrInvalidConfig)
	}
	if c.Weights.Dense+c.Weights.Sparse <= 0 {
		return fmt.Errorf("%w: fusion weights must have a positive total", ErrInvalidConfig)
	}
	if c.RRFConstant <= 0 {
		return fmt.Errorf("%w: rrf constant must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateCollectionName validates a collection name against naming rules.
// Rejects uppercase, special characters, path separators, spaces.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: collection name cannot be empty", ErrInvalidCollectionName)
	}
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: collection name must match ^[a-z0-9_]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}
