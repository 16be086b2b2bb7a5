package embeddings

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/tidemarklabs/recall/internal/vectorstore"
)

// ConvertLexicalWeights converts a token-id to weight map into a sparse
// vector with indices sorted ascending. The conversion is deterministic so
// identical model output always produces identical vectors.
//
// Non-positive weights are dropped; a token id that is not a base-10
// unsigned integer is an error.
func ConvertLexicalWeights(weights map[string]float32) (vectorstore.SparseVector, error) {
	if len(weights) == 0 {
		return vectorstore.SparseVector{}, nil
	}

	type pair struct {
		index uint32
		value float32
	}
	pairs := make([]pair, 0, len(weights))
	for tokenID, weight := range weights {
		if weight <= 0 {
			continue
		}
		idx, err := strconv.ParseUint(tokenID, 10, 32)
		if err != nil {
			return vectorstore.SparseVector{}, fmt.Errorf("token id %q is not a valid index: %w", tokenID, err)
		}
		pairs = append(pairs, pair{index: uint32(idx), value: weight})
	}
	if len(pairs) == 0 {
		return vectorstore.SparseVector{}, nil
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].index < pairs[j].index })

	sparse := vectorstore.SparseVector{
		Indices: make([]uint32, len(pairs)),
		Values:  make([]float32, len(pairs)),
	}
	for i, p := range pairs {
		sparse.Indices[i] = p.index
		sparse.Values[i] = p.value
	}
	return sparse, nil
}
