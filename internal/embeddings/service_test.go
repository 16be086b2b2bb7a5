package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemarklabs/recall/internal/vectorstore"
)

func TestConvertLexicalWeights(t *testing.T) {
	sparse, err := ConvertLexicalWeights(map[string]float32{
		"42": 0.8,
		"7":  0.3,
		"99": 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint32{7, 42, 99}, sparse.Indices)
	assert.Equal(t, []float32{0.3, 0.8, 0.1}, sparse.Values)
	assert.NoError(t, sparse.Validate())
}

func TestConvertLexicalWeightsEmpty(t *testing.T) {
	sparse, err := ConvertLexicalWeights(nil)
	require.NoError(t, err)
	assert.True(t, sparse.IsEmpty())
}

func TestConvertLexicalWeightsDropsNonPositive(t *testing.T) {
	sparse, err := ConvertLexicalWeights(map[string]float32{
		"1": 0.5,
		"2": 0,
		"3": -0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, sparse.Indices)
}

func TestConvertLexicalWeightsBadTokenID(t *testing.T) {
	_, err := ConvertLexicalWeights(map[string]float32{"notanumber": 0.5})
	assert.Error(t, err)
}

func TestConvertLexicalWeightsDeterministic(t *testing.T) {
	in := map[string]float32{"10": 0.1, "5": 0.5, "30": 0.3, "20": 0.2}
	first, err := ConvertLexicalWeights(in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ConvertLexicalWeights(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)

	svc, err := NewService(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return svc
}

func TestEncodeDocuments(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/encode_documents", r.URL.Path)

		var req encodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"hello world"}, req.Inputs)

		resp := encodeResponse{
			Dense:  [][]float32{{0.1, 0.2, 0.3}},
			Sparse: []map[string]float32{{"12": 0.9, "4": 0.4}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	encodings, err := svc.EncodeDocuments(context.Background(), []string{"hello world"})
	require.NoError(t, err)
	require.Len(t, encodings, 1)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, encodings[0].Dense)
	assert.Equal(t, []uint32{4, 12}, encodings[0].Sparse.Indices)
	assert.Equal(t, []float32{0.4, 0.9}, encodings[0].Sparse.Values)
}

func TestEncodeQueriesPath(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/encode_queries", r.URL.Path)
		resp := encodeResponse{
			Dense:  [][]float32{{1, 2}},
			Sparse: []map[string]float32{nil},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	encodings, err := svc.EncodeQueries(context.Background(), []string{"query"})
	require.NoError(t, err)
	require.Len(t, encodings, 1)
	assert.True(t, encodings[0].Sparse.IsEmpty())
}

func TestEncodeEmptyInput(t *testing.T) {
	svc, err := NewService(Config{BaseURL: "http://localhost:9"})
	require.NoError(t, err)

	_, err = svc.EncodeDocuments(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestEncodeServerError(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := svc.EncodeDocuments(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEncodeCountMismatch(t *testing.T) {
	svc := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		resp := encodeResponse{Dense: [][]float32{{1}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	_, err := svc.EncodeDocuments(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestNewServiceValidation(t *testing.T) {
	// Empty config is filled by defaults.
	svc, err := NewService(Config{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", svc.config.BaseURL)
	assert.Equal(t, "BAAI/bge-m3", svc.config.Model)
}

var _ Encoder = (*Service)(nil)

// Encoding sanity: the sparse half always satisfies the vector store's
// equal-length invariant after conversion.
func TestEncodingInvariant(t *testing.T) {
	sparse, err := ConvertLexicalWeights(map[string]float32{"0": 0.5, "4294967295": 0.1})
	require.NoError(t, err)
	require.NoError(t, sparse.Validate())
	assert.Equal(t, vectorstore.SparseVector{
		Indices: []uint32{0, 4294967295},
		Values:  []float32{0.5, 0.1},
	}, sparse)
}
