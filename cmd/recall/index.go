package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tidemarklabs/recall/internal/engine"
	"github.com/tidemarklabs/recall/internal/retrieval"
)

var (
	indexSource string
	indexDocID  string
	indexURL    string
)

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Index documents into the vector store",
	Long: `Index one or more documents: each is chunked, encoded into dense and
sparse vectors, and upserted into the configured collection.

Examples:
  # Index files
  recall index notes/a.md notes/b.md

  # Index stdin as web content
  curl -s https://example.com | recall index --source web --url https://example.com -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexSource, "source", "file", "content source: file, web, or screen")
	indexCmd.Flags().StringVar(&indexDocID, "doc-id", "", "document id (default: derived from path, or random for stdin)")
	indexCmd.Flags().StringVar(&indexURL, "url", "", "origin URL for web content read from stdin")
}

func runIndex(cmd *cobra.Command, args []string) error {
	source, err := retrieval.ParseSource(indexSource)
	if err != nil {
		return err
	}

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	docs := make([]engine.Document, 0, len(args))
	for _, arg := range args {
		doc, err := readDocument(arg, source)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if err := a.engine.Index(cmd.Context(), docs); err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d document(s)\n", len(docs))
	return nil
}

func readDocument(arg string, source retrieval.Source) (engine.Document, error) {
	if arg == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return engine.Document{}, fmt.Errorf("failed to read from stdin: %w", err)
		}
		docID := indexDocID
		if docID == "" {
			docID = uuid.NewString()
		}
		return engine.Document{
			ID:        docID,
			Source:    source,
			Location:  indexURL,
			Timestamp: time.Now().UTC(),
			Text:      string(content),
		}, nil
	}

	content, err := os.ReadFile(arg)
	if err != nil {
		return engine.Document{}, fmt.Errorf("failed to read file %s: %w", arg, err)
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return engine.Document{}, fmt.Errorf("failed to resolve path %s: %w", arg, err)
	}

	docID := indexDocID
	if docID == "" {
		docID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
	}

	info, err := os.Stat(arg)
	ts := time.Now().UTC()
	if err == nil {
		ts = info.ModTime().UTC()
	}

	return engine.Document{
		ID:        docID,
		Source:    source,
		Location:  abs,
		Timestamp: ts,
		Text:      string(content),
	}, nil
}
