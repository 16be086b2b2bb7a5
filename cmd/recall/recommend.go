package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tidemarklabs/recall/internal/keywords"
)

var (
	recommendTopN    int
	recommendProfile []string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [files...]",
	Short: "Recommend keywords from recent activity",
	Long: `Recommend extracts candidate keywords from activity documents and
ranks them against the user's interest profile.

Each file argument is one activity document; "-" reads a single document
from stdin. Interests are passed with --interest (repeatable).

Examples:
  recall recommend --interest "machine learning" history/*.txt
  recall recommend --interest golang --interest grpc --top 5 activity.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().IntVar(&recommendTopN, "top", 10, "number of keywords to return")
	recommendCmd.Flags().StringArrayVar(&recommendProfile, "interest", nil, "interest profile entry (repeatable)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	docs := make([]string, 0, len(args))
	for _, arg := range args {
		var content []byte
		var err error
		if arg == "-" {
			content, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read from stdin: %w", err)
			}
		} else {
			content, err = os.ReadFile(arg)
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", arg, err)
			}
		}
		docs = append(docs, string(content))
	}

	terms := keywords.Select(docs, recommendProfile, recommendTopN)
	if len(terms) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no keywords")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(terms, "\n"))
	return nil
}
