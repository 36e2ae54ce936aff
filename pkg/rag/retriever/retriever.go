package retriever

import (
	"context"
	"errors"
	"strings"
	"time"

	"healthix-be/internal/pkg/logger"
	"healthix-be/pkg/rag/index"
	"healthix-be/pkg/store"
)

var (
	ErrEmptyQuery  = errors.New("query must not be empty")
	ErrInvalidTopK = errors.New("topK must be positive")
)

// Embedder is the slice of the embedding provider retrieval needs.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorSearcher is the slice of the vector index retrieval needs.
type VectorSearcher interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int, uploadBatchId string) ([]store.Hit, error)
}

// KeywordRecord is one searchable row for the keyword fallback path.
type KeywordRecord struct {
	Content  string
	Fields   []string
	Metadata map[string]string
}

// KeywordSource supplies rows for substring matching when vector search
// cannot be used or returns nothing.
type KeywordSource interface {
	KeywordRecords(ctx context.Context) ([]KeywordRecord, error)
}

// Engine retrieves context for a query, degrading gracefully: semantic search
// over staging and durable namespaces first, keyword substring matching when
// no embedder is available or semantic search comes back empty. Backend
// failures are logged and absorbed; Retrieve only errors on bad input.
type Engine struct {
	embedder     Embedder // nil when no provider is configured
	searcher     VectorSearcher
	keywords     KeywordSource
	logger       logger.ILogger
	queryTimeout time.Duration
}

func NewEngine(embedder Embedder, searcher VectorSearcher, keywords KeywordSource, log logger.ILogger, queryTimeout time.Duration) *Engine {
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &Engine{
		embedder:     embedder,
		searcher:     searcher,
		keywords:     keywords,
		logger:       log,
		queryTimeout: queryTimeout,
	}
}

// Retrieve returns up to topK hits for the query. Staging hits (scoped to
// stagingBatchId, skipped when empty) come before durable patient hits so
// session uploads take priority in the assembled context.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int, stagingBatchId string) ([]store.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}

	if e.embedder == nil {
		e.logger.Warn("Retriever", "No embedding provider, using keyword search", map[string]interface{}{
			"query": query,
		})
		return truncate(e.keywordSearch(ctx, query), topK), nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	vectors, err := e.embedder.Embed(embedCtx, []string{query})
	if err != nil || len(vectors) == 0 {
		e.logger.Error("Retriever", "Query embedding failed, falling back to keyword search", map[string]interface{}{
			"error": errString(err),
		})
		return truncate(e.keywordSearch(ctx, query), topK), nil
	}
	queryVector := vectors[0]

	hits := make([]store.Hit, 0, topK*2)
	if stagingBatchId != "" {
		stagingHits, err := e.searcher.Query(ctx, index.NamespaceStagingDocuments, queryVector, topK, stagingBatchId)
		if err != nil {
			e.logger.Error("Retriever", "Staging search failed", map[string]interface{}{
				"upload_batch_id": stagingBatchId,
				"error":           err.Error(),
			})
		} else {
			hits = append(hits, stagingHits...)
		}
	}

	durableHits, err := e.searcher.Query(ctx, index.NamespacePatientRecords, queryVector, topK, "")
	if err != nil {
		e.logger.Error("Retriever", "Patient record search failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		hits = append(hits, durableHits...)
	}

	if len(hits) == 0 {
		return truncate(e.keywordSearch(ctx, query), topK), nil
	}
	return truncate(hits, topK), nil
}

// keywordSearch does case-insensitive matching of the whole query string
// against each record's concatenated fields. Matches all score 1.0 and keep
// source order, so results are stable across calls.
func (e *Engine) keywordSearch(ctx context.Context, query string) []store.Hit {
	records, err := e.keywords.KeywordRecords(ctx)
	if err != nil {
		e.logger.Error("Retriever", "Keyword source failed", map[string]interface{}{
			"error": err.Error(),
		})
		return []store.Hit{}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	hits := make([]store.Hit, 0)
	for _, rec := range records {
		haystack := strings.ToLower(strings.Join(rec.Fields, " "))
		if strings.Contains(haystack, needle) {
			hits = append(hits, store.Hit{
				Content:  rec.Content,
				Metadata: rec.Metadata,
				Score:    1.0,
			})
		}
	}
	return hits
}

func truncate(hits []store.Hit, topK int) []store.Hit {
	if hits == nil {
		return []store.Hit{}
	}
	if len(hits) > topK {
		return hits[:topK]
	}
	return hits
}

func errString(err error) string {
	if err == nil {
		return "empty embedding response"
	}
	return err.Error()
}
