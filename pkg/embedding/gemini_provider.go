package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type GeminiProvider struct {
	ApiKey string
	Model  string
	client *http.Client

	// endpoint override for tests
	baseURL string
}

func NewGeminiProvider(apiKey string) Provider {
	return &GeminiProvider{
		ApiKey:  apiKey,
		Model:   "text-embedding-004",
		client:  &http.Client{},
		baseURL: "https://generativelanguage.googleapis.com/v1",
	}
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

type geminiEmbedContent struct {
	Parts []geminiEmbedPart `json:"parts"`
}

type geminiEmbedPart struct {
	Text string `json:"text"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiEmbedRequest struct {
	Model   string             `json:"model"`
	Content geminiEmbedContent `json:"content"`
}

type geminiEmbedding struct {
	Values []float32 `json:"values"`
}

// Gemini returns "embeddings" for batchEmbedContents and "embedding" for
// embedContent; both shapes are accepted here.
type geminiEmbedResponse struct {
	Embeddings []geminiEmbedding `json:"embeddings"`
	Embedding  *geminiEmbedding  `json:"embedding"`
}

// Embed generates vectors for all texts in a single batchEmbedContents call.
// Output order matches input order as guaranteed by the API.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	batchReq := geminiBatchRequest{
		Requests: make([]geminiEmbedRequest, 0, len(texts)),
	}
	for _, text := range texts {
		batchReq.Requests = append(batchReq.Requests, geminiEmbedRequest{
			Model: fmt.Sprintf("models/%s", p.Model),
			Content: geminiEmbedContent{
				Parts: []geminiEmbedPart{{Text: text}},
			},
		})
	}

	reqJson, err := json.Marshal(batchReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:batchEmbedContents", p.baseURL, p.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var parsed geminiEmbedResponse
	if err := json.Unmarshal(resByte, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Embeddings) == 0 && parsed.Embedding != nil {
		parsed.Embeddings = []geminiEmbedding{*parsed.Embedding}
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(parsed.Embeddings), len(texts))
	}

	vectors := make([][]float32, 0, len(parsed.Embeddings))
	for _, emb := range parsed.Embeddings {
		vectors = append(vectors, normalizeVector(emb.Values))
	}
	return vectors, nil
}
