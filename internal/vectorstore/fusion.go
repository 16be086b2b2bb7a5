package vectorstore

import "sort"

// rankedList pairs a per-space ranked result list with its fusion weight.
type rankedList struct {
	points []ScoredPoint
	weight float64
}

// fuseRRF merges ranked lists with Reciprocal Rank Fusion.
//
// Each point at zero-based rank r in a list with weight w contributes
// w * 1/(k + r + 1) to its running score. Scores accumulate across lists,
// so a point present in both spaces outranks a point of equal per-list
// rank present in only one. The fused list is sorted by summed score
// descending and truncated to limit.
func fuseRRF(lists []rankedList, k, limit int) []ScoredPoint {
	type fused struct {
		point ScoredPoint
		score float64
		order int // first-seen position, stabilizes equal scores
	}
	acc := make(map[string]*fused)
	seen := 0

	for _, list := range lists {
		for rank, p := range list.points {
			contribution := list.weight / float64(k+rank+1)
			if f, ok := acc[p.ID]; ok {
				f.score += contribution
				continue
			}
			acc[p.ID] = &fused{point: p, score: contribution, order: seen}
			seen++
		}
	}

	merged := make([]*fused, 0, len(acc))
	for _, f := range acc {
		merged = append(merged, f)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].order < merged[j].order
	})

	if limit > len(merged) {
		limit = len(merged)
	}
	out := make([]ScoredPoint, limit)
	for i := 0; i < limit; i++ {
		out[i] = merged[i].point
		out[i].Score = merged[i].score
	}
	return out
}
