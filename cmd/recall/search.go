package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidemarklabs/recall/internal/retrieval"
)

var (
	searchLimit   int
	searchSource  string
	searchFilters []string
	searchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid search over indexed documents",
	Long: `Search runs the query through both dense and sparse retrieval and
fuses the results with reciprocal rank fusion.

Examples:
  # Top 5 results
  recall search "vector database tuning" --limit 5

  # Only file-backed results, as JSON
  recall search "quarterly report" --from file --json

  # Payload filter (key=value, repeatable)
  recall search "auth flow" --filter project=atlas`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchSource, "from", "", "restrict to a source: file, web, or screen")
	searchCmd.Flags().StringArrayVar(&searchFilters, "filter", nil, "payload filter as key=value")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	var source retrieval.Source
	if searchSource != "" {
		parsed, err := retrieval.ParseSource(searchSource)
		if err != nil {
			return err
		}
		source = parsed
	}

	filters, err := parseFilters(searchFilters)
	if err != nil {
		return err
	}

	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	hits := a.engine.Search(cmd.Context(), args[0], searchLimit, source, filters)

	if searchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no results")
		return nil
	}
	for i, hit := range hits {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. [%.4f] (%s) %s\n", i+1, hit.Score, hit.Source, hit.Path)
		if hit.Snippet != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", hit.Snippet)
		}
	}
	return nil
}

func parseFilters(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}
