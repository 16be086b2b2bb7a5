// Package keywords extracts and ranks candidate keywords from a user's
// activity documents for personalized recommendations.
package keywords

import (
	"math"
)

// TermStats holds corpus statistics for one scoring invocation.
type TermStats struct {
	// Scores maps each surviving term to its TF-IDF score summed over the
	// input documents.
	Scores map[string]float64

	// DocFrequency maps each term to the number of input documents that
	// contain it.
	DocFrequency map[string]int

	// DocCount is the number of input documents.
	DocCount int

	// Degraded is true when scores are raw frequency counts instead of
	// TF-IDF. Callers see identical map shapes either way.
	Degraded bool
}

// Score tokenizes each document and computes TF-IDF term scores along with
// per-term document frequency.
//
// Empty input yields empty maps, not an error.
func Score(documents []string) TermStats {
	stats := TermStats{
		Scores:       make(map[string]float64),
		DocFrequency: make(map[string]int),
		DocCount:     len(documents),
	}
	if len(documents) == 0 {
		return stats
	}

	docTokens := make([][]string, len(documents))
	for i, doc := range documents {
		docTokens[i] = Tokenize(doc)
	}

	// Document frequency over cleaned token sets.
	for _, tokens := range docTokens {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			stats.DocFrequency[t]++
		}
	}

	n := float64(len(documents))
	for _, tokens := range docTokens {
		if len(tokens) == 0 {
			continue
		}
		counts := make(map[string]int, len(tokens))
		for _, t := range tokens {
			counts[t]++
		}
		total := float64(len(tokens))
		for term, c := range counts {
			tf := float64(c) / total
			idf := math.Log((1+n)/(1+float64(stats.DocFrequency[term]))) + 1
			stats.Scores[term] += tf * idf
		}
	}
	return stats
}

// ScoreFrequency is the degraded scoring path: raw term frequency counts
// with every term's document frequency pinned to the document count.
// It never returns empty-handed for non-empty tokenizable input.
func ScoreFrequency(documents []string) TermStats {
	stats := TermStats{
		Scores:       make(map[string]float64),
		DocFrequency: make(map[string]int),
		DocCount:     len(documents),
		Degraded:     true,
	}
	for _, doc := range documents {
		for _, t := range Tokenize(doc) {
			stats.Scores[t]++
		}
	}
	for term := range stats.Scores {
		stats.DocFrequency[term] = len(documents)
	}
	return stats
}
