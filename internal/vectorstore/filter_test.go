package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilterNilAndEmpty(t *testing.T) {
	filter, err := buildFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, filter)

	filter, err = buildFilter(map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestBuildFilterStringValue(t *testing.T) {
	filter, err := buildFilter(map[string]any{"source": "file"})
	require.NoError(t, err)
	require.NotNil(t, filter)
	assert.Len(t, filter.Must, 1)
}

func TestBuildFilterStringSlice(t *testing.T) {
	filter, err := buildFilter(map[string]any{"source": []string{"file", "web"}})
	require.NoError(t, err)
	require.NotNil(t, filter)
	assert.Len(t, filter.Must, 1)
}

func TestBuildFilterEmptySliceSkipped(t *testing.T) {
	filter, err := buildFilter(map[string]any{"source": []string{}})
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestBuildFilterUnsupportedType(t *testing.T) {
	_, err := buildFilter(map[string]any{"count": 42})
	assert.Error(t, err)

	_, err = buildFilter(map[string]any{"nested": map[string]string{"a": "b"}})
	assert.Error(t, err)
}

func TestBuildFilterMultipleConditions(t *testing.T) {
	filter, err := buildFilter(map[string]any{
		"source": "web",
		"doc_id": []string{"d1", "d2"},
	})
	require.NoError(t, err)
	require.NotNil(t, filter)
	assert.Len(t, filter.Must, 2)
}
