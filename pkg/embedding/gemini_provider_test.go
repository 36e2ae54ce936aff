package embedding

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeminiProvider(serverURL string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:  "test-key",
		Model:   "text-embedding-004",
		client:  &http.Client{},
		baseURL: serverURL,
	}
}

func TestGeminiEmbed_BatchShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embeddings":[{"values":[3,4]},{"values":[0,1]}]}`))
	}))
	defer server.Close()

	provider := newTestGeminiProvider(server.URL)
	vectors, err := provider.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	// Vectors come back unit-normalized
	assert.InDelta(t, 0.6, vectors[0][0], 1e-6)
	assert.InDelta(t, 0.8, vectors[0][1], 1e-6)
	assert.InDelta(t, 1.0, float64(vectors[1][1]), 1e-6)
}

func TestGeminiEmbed_SingleShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":{"values":[1,0,0]}}`))
	}))
	defer server.Close()

	provider := newTestGeminiProvider(server.URL)
	vectors, err := provider.Embed(context.Background(), []string{"only"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, float32(1), vectors[0][0])
}

func TestGeminiEmbed_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings":[{"values":[1,0]}]}`))
	}))
	defer server.Close()

	provider := newTestGeminiProvider(server.URL)
	_, err := provider.Embed(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestGeminiEmbed_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer server.Close()

	provider := newTestGeminiProvider(server.URL)
	_, err := provider.Embed(context.Background(), []string{"a"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNormalizeVector(t *testing.T) {
	normalized := normalizeVector([]float32{3, 4})
	var magnitude float64
	for _, v := range normalized {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-6)

	// Zero vector passes through untouched
	zero := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}
