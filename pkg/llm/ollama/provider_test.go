package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthix-be/pkg/llm"
)

func TestChat_MapsModelRoleToAssistant(t *testing.T) {
	var captured ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "hello back"},
			Done:    true,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2")
	reply, err := provider.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "previous answer"},
		{Role: "user", Content: "follow up"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	assert.Equal(t, "llama3.2", captured.Model)
	assert.False(t, captured.Stream)
}

func TestGenerate_PassesOptions(t *testing.T) {
	var captured ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2")
	_, err := provider.Generate(context.Background(), "summarize this",
		llm.WithTemperature(0.2), llm.WithMaxTokens(256))
	require.NoError(t, err)

	require.NotNil(t, captured.Options)
	assert.Equal(t, 0.2, captured.Options.Temperature)
	assert.Equal(t, 256, captured.Options.NumPredict)
}

func TestGenerate_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "missing-model")
	_, err := provider.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGenerate_EmptyMessageIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "llama3.2")
	_, err := provider.Generate(context.Background(), "hi")
	require.Error(t, err)
}

func TestNewOllamaProvider_Defaults(t *testing.T) {
	provider := NewOllamaProvider("", "")
	assert.Equal(t, "http://localhost:11434", provider.BaseURL)
	assert.Equal(t, "llama3.2", provider.ModelName)
}
