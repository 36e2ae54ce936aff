package embedding

import (
	"context"
	"log"
	"math"
)

// Provider turns a batch of texts into one vector per text, order preserved.
// A nil Provider means no embedding backend is configured; callers must check
// before retrieval and take the keyword-fallback path instead.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// Select picks the embedding backend once, at startup. Local (Ollama) is
// preferred, then remote (Gemini); nil when neither is configured. The choice
// is fixed for the process lifetime so retrieval behavior stays deterministic.
func Select(providerType, ollamaBaseURL, ollamaModel, geminiAPIKey string) Provider {
	switch providerType {
	case "ollama":
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", ollamaModel)
		return NewOllamaProvider(ollamaBaseURL, ollamaModel)
	case "gemini":
		if geminiAPIKey == "" {
			log.Printf("[WARN] EMBEDDING_PROVIDER=gemini but GEMINI_API_KEY is empty; embeddings unavailable")
			return nil
		}
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return NewGeminiProvider(geminiAPIKey)
	default:
		log.Printf("[WARN] No embedding provider configured; retrieval will use keyword fallback")
		return nil
	}
}

// normalizeVector scales a vector to unit length. Cosine distance in pgvector
// requires normalized vectors for accurate similarity.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
