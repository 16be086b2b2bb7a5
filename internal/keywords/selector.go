package keywords

import (
	"math"
	"sort"
)

// SelectorConfig tunes interest-weighted keyword selection.
//
// The default fit weighting (1x term score, 9x interest similarity) and the
// 0.4 document-frequency cutoff are product tuning decisions carried as
// configuration defaults.
type SelectorConfig struct {
	// MaxDocFreqRatio discards terms appearing in at least this fraction
	// of documents: too generic to be informative.
	MaxDocFreqRatio float64

	// CandidateLimit caps the candidate pool, keeping the highest raw
	// scores, to bound similarity cost.
	CandidateLimit int

	// ScoreWeight scales the normalized term score in the fit score.
	ScoreWeight float64

	// SimilarityWeight scales the interest similarity in the fit score.
	SimilarityWeight float64

	// MinFitScore drops candidates at or below this fit score.
	MinFitScore float64
}

// DefaultSelectorConfig returns the standard selection tuning.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MaxDocFreqRatio:  0.4,
		CandidateLimit:   200,
		ScoreWeight:      1,
		SimilarityWeight: 9,
		MinFitScore:      0.05,
	}
}

type candidate struct {
	term     string
	rawScore float64
	fitScore float64
}

// Select ranks candidate keywords from documents against the user's
// interest profile and returns at most topN terms, using default tuning.
//
// With an empty profile the ranking falls back to pure term scores. The
// result is deterministic for fixed inputs.
func Select(documents, profile []string, topN int) []string {
	return SelectWithConfig(documents, profile, topN, DefaultSelectorConfig())
}

// SelectWithConfig is Select with explicit tuning.
func SelectWithConfig(documents, profile []string, topN int, cfg SelectorConfig) []string {
	if topN <= 0 {
		return nil
	}
	// A single document carries no document-frequency signal, so TF-IDF
	// degenerates; raw frequency counts rank identically there.
	var stats TermStats
	if len(documents) < 2 {
		stats = ScoreFrequency(documents)
	} else {
		stats = Score(documents)
	}
	if len(stats.Scores) == 0 {
		return nil
	}

	candidates := buildCandidates(stats, cfg)
	if len(candidates) == 0 {
		return nil
	}

	profileVec := profileVector(profile)
	if len(profileVec) == 0 {
		// Empty or untokenizable profile: pure score fallback.
		return topByRawScore(candidates, topN)
	}

	weighted, ok := applyInterestWeighting(candidates, profileVec, cfg)
	if !ok {
		return topByRawScore(candidates, topN)
	}

	sort.Slice(weighted, func(i, j int) bool {
		if weighted[i].fitScore != weighted[j].fitScore {
			return weighted[i].fitScore > weighted[j].fitScore
		}
		if weighted[i].rawScore != weighted[j].rawScore {
			return weighted[i].rawScore > weighted[j].rawScore
		}
		return weighted[i].term < weighted[j].term
	})

	return takeTerms(weighted, topN)
}

// buildCandidates filters generic terms and caps the pool by raw score.
// When the frequency filter would empty the pool (tiny corpora where every
// term is ubiquitous), the unfiltered pool is kept instead.
func buildCandidates(stats TermStats, cfg SelectorConfig) []candidate {
	candidates := make([]candidate, 0, len(stats.Scores))
	for term, score := range stats.Scores {
		if stats.DocCount > 0 {
			ratio := float64(stats.DocFrequency[term]) / float64(stats.DocCount)
			if !stats.Degraded && ratio >= cfg.MaxDocFreqRatio {
				continue
			}
		}
		candidates = append(candidates, candidate{term: term, rawScore: score})
	}
	if len(candidates) == 0 {
		for term, score := range stats.Scores {
			candidates = append(candidates, candidate{term: term, rawScore: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rawScore != candidates[j].rawScore {
			return candidates[i].rawScore > candidates[j].rawScore
		}
		return candidates[i].term < candidates[j].term
	})

	if cfg.CandidateLimit > 0 && len(candidates) > cfg.CandidateLimit {
		candidates = candidates[:cfg.CandidateLimit]
	}
	return candidates
}

// profileVector projects the interest profile into term space: token
// frequency over the cleaned profile tokens.
func profileVector(profile []string) map[string]float64 {
	vec := make(map[string]float64)
	for _, entry := range profile {
		for _, tok := range Tokenize(entry) {
			vec[tok]++
		}
	}
	return vec
}

// applyInterestWeighting computes fit scores over candidates. Returns false
// when the similarity computation cannot produce a usable result, in which
// case the caller falls back to pure score ranking.
func applyInterestWeighting(candidates []candidate, profileVec map[string]float64, cfg SelectorConfig) ([]candidate, bool) {
	var norm float64
	for _, w := range profileVec {
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, false
	}

	maxScore := candidates[0].rawScore
	for _, c := range candidates {
		if c.rawScore > maxScore {
			maxScore = c.rawScore
		}
	}
	if maxScore <= 0 {
		return nil, false
	}

	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		// Cosine similarity between the one-hot term vector and the
		// profile vector reduces to the term's normalized profile weight.
		sim := profileVec[c.term] / norm
		fit := cfg.ScoreWeight*(c.rawScore/maxScore) + cfg.SimilarityWeight*sim
		if fit <= cfg.MinFitScore {
			continue
		}
		c.fitScore = fit
		out = append(out, c)
	}
	return out, true
}

func topByRawScore(candidates []candidate, topN int) []string {
	// Candidates arrive sorted by raw score from buildCandidates.
	return takeTerms(candidates, topN)
}

func takeTerms(candidates []candidate, topN int) []string {
	if topN > len(candidates) {
		topN = len(candidates)
	}
	terms := make([]string, topN)
	for i := 0; i < topN; i++ {
		terms[i] = candidates[i].term
	}
	return terms
}
