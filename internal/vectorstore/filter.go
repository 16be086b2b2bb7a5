package vectorstore

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// buildFilter translates a flat key to value/values map into Qdrant filter
// conditions. Every entry becomes a Must condition: string values match a
// single keyword, string slices match any of the given keywords.
//
// An unsupported value type is an error; the caller degrades to an
// unfiltered search rather than aborting.
func buildFilter(filters map[string]any) (*qdrant.Filter, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	conditions := make([]*qdrant.Condition, 0, len(filters))
	for key, value := range filters {
		switch v := value.(type) {
		case string:
			conditions = append(conditions, qdrant.NewMatch(key, v))
		case []string:
			if len(v) == 0 {
				continue
			}
			conditions = append(conditions, qdrant.NewMatchKeywords(key, v...))
		default:
			return nil, fmt.Errorf("unsupported filter value type %T for key %q", value, key)
		}
	}
	if len(conditions) == 0 {
		return nil, nil
	}
	return &qdrant.Filter{Must: conditions}, nil
}
