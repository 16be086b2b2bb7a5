// Package main implements the recall CLI for indexing, hybrid search, and
// keyword recommendation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tidemarklabs/recall/internal/chunker"
	"github.com/tidemarklabs/recall/internal/config"
	"github.com/tidemarklabs/recall/internal/embeddings"
	"github.com/tidemarklabs/recall/internal/engine"
	"github.com/tidemarklabs/recall/internal/logging"
	"github.com/tidemarklabs/recall/internal/metastore"
	"github.com/tidemarklabs/recall/internal/retrieval"
	"github.com/tidemarklabs/recall/internal/vectorstore"
)

var (
	// configPath overrides the default config file location.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Hybrid retrieval and personalization engine",
	Long: `recall indexes documents into a dual dense+sparse vector store and
serves hybrid search with reciprocal rank fusion, plus interest-weighted
keyword recommendation from recent activity.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/recall/config.yaml)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(adminCmd)
}

// app holds the wired components a command needs, with a cleanup hook.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	vectors *vectorstore.Client
	meta    *metastore.Store
	engine  *engine.Engine

	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	if a.logger != nil {
		_ = logging.Sync(a.logger)
	}
}

// buildApp loads configuration and wires the engine. Commands that only
// need config or the vector client still go through here so wiring stays in
// one place.
func buildApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}

	vectors, err := vectorstore.NewClient(cfg.Qdrant, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	a.vectors = vectors
	a.closers = append(a.closers, vectors.Close)

	if err := vectors.EnsureCollection(cmd.Context()); err != nil {
		a.close()
		return nil, fmt.Errorf("ensuring collection: %w", err)
	}

	meta, err := metastore.Open(cfg.Metastore.DataDir)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("opening metastore: %w", err)
	}
	a.meta = meta
	a.closers = append(a.closers, meta.Close)

	encoder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("building embeddings client: %w", err)
	}
	repo := retrieval.NewRepository(vectors, meta, logger)
	splitter := chunker.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	a.engine = engine.New(splitter, encoder, vectors, repo, meta, logger)

	return a, nil
}
