// Package config provides configuration loading for recall.
package config

import (
	"fmt"

	"github.com/tidemarklabs/recall/internal/embeddings"
	"github.com/tidemarklabs/recall/internal/logging"
	"github.com/tidemarklabs/recall/internal/vectorstore"
)

// Config is the root configuration for the recall engine and CLI.
type Config struct {
	Qdrant     vectorstore.Config `koanf:"qdrant"`
	Embeddings embeddings.Config  `koanf:"embeddings"`
	Metastore  MetastoreConfig    `koanf:"metastore"`
	Chunking   ChunkingConfig     `koanf:"chunking"`
	Logging    logging.Config     `koanf:"logging"`
}

// MetastoreConfig configures the local document metadata store.
type MetastoreConfig struct {
	// DataDir is the directory holding the sqlite database.
	// Defaults to ~/.recall/data.
	DataDir string `koanf:"data_dir"`
}

// ChunkingConfig configures document splitting.
type ChunkingConfig struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int `koanf:"chunk_size"`

	// Overlap is the number of runes carried over between adjacent chunks.
	Overlap int `koanf:"overlap"`
}

// Validate checks the full configuration for errors.
func (c *Config) Validate() error {
	if err := c.Qdrant.Validate(); err != nil {
		return fmt.Errorf("qdrant: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Chunking.ChunkSize < 0 {
		return fmt.Errorf("chunking: chunk_size must not be negative, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking: overlap must not be negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.ChunkSize > 0 && c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking: overlap %d must be smaller than chunk_size %d", c.Chunking.Overlap, c.Chunking.ChunkSize)
	}
	return nil
}
