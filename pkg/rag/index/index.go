package index

import (
	"context"
	"fmt"
	"sync"

	"healthix-be/internal/entity"
	"healthix-be/internal/pkg/logger"
	"healthix-be/internal/repository/contract"
	"healthix-be/pkg/store"
)

const (
	// NamespacePatientRecords holds the durable index built from patient rows.
	NamespacePatientRecords = "patient_records"
	// NamespaceStagingDocuments holds chunks from files attached to a chat
	// session, scoped by upload batch until the session ends.
	NamespaceStagingDocuments = "staging_documents"
)

// Entry is one chunk to be indexed.
type Entry struct {
	Key           string
	Document      string
	Vector        []float32
	Metadata      map[string]interface{}
	ChunkIndex    int
	UploadBatchId string
}

// RecordSource provides the rows a namespace is rebuilt from.
type RecordSource interface {
	IndexEntries(ctx context.Context) ([]Entry, error)
}

// Index is a namespace-partitioned similarity index over pgvector. Writes and
// rebuilds hold the write lock so queries never observe a half-built state.
type Index struct {
	repo   contract.VectorRecordRepository
	logger logger.ILogger
	mu     sync.RWMutex
}

func NewIndex(repo contract.VectorRecordRepository, log logger.ILogger) *Index {
	return &Index{
		repo:   repo,
		logger: log,
	}
}

// Add inserts a batch of entries into the namespace. The batch is atomic:
// either all entries become visible to queries or none do.
func (idx *Index) Add(ctx context.Context, namespace string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	records := make([]*entity.VectorRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, entryToRecord(namespace, e))
	}

	if err := idx.repo.CreateBulk(ctx, records); err != nil {
		idx.logger.Error("VectorIndex", "Failed to add batch", map[string]interface{}{
			"namespace": namespace,
			"count":     len(entries),
			"error":     err.Error(),
		})
		return err
	}

	idx.logger.Info("VectorIndex", "Batch indexed", map[string]interface{}{
		"namespace": namespace,
		"count":     len(entries),
	})
	return nil
}

// Query returns up to topK hits ordered by descending similarity. Scores are
// 1 - cosine distance. An empty result is a valid outcome, not an error.
// uploadBatchId narrows staging queries to one session's batch; empty matches all.
func (idx *Index) Query(ctx context.Context, namespace string, vector []float32, topK int, uploadBatchId string) ([]store.Hit, error) {
	if topK <= 0 {
		return []store.Hit{}, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scored, err := idx.repo.SearchSimilar(ctx, namespace, vector, topK, uploadBatchId)
	if err != nil {
		return nil, err
	}

	hits := make([]store.Hit, 0, len(scored))
	for _, s := range scored {
		hits = append(hits, store.Hit{
			Content:  s.Record.Document,
			Metadata: s.Record.Metadata,
			Score:    s.Similarity,
		})
	}
	return hits, nil
}

// ReplaceRecord atomically swaps every chunk stored under (namespace, key)
// with the given entries. Used when a patient's text changes.
func (idx *Index) ReplaceRecord(ctx context.Context, namespace, key string, entries []Entry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	records := make([]*entity.VectorRecord, 0, len(entries))
	for _, e := range entries {
		e.Key = key
		records = append(records, entryToRecord(namespace, e))
	}
	return idx.repo.ReplaceForRecordKey(ctx, namespace, key, records)
}

// DeleteRecord removes all chunks under (namespace, key).
func (idx *Index) DeleteRecord(ctx context.Context, namespace, key string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.repo.DeleteByRecordKey(ctx, namespace, key)
}

// DropBatch removes every staging chunk belonging to one upload batch.
func (idx *Index) DropBatch(ctx context.Context, namespace, uploadBatchId string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.repo.DeleteByUploadBatch(ctx, namespace, uploadBatchId)
}

// Count reports how many chunks a namespace holds.
func (idx *Index) Count(ctx context.Context, namespace string) (int64, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.repo.Count(ctx, namespace)
}

// Rebuild drops the namespace and re-indexes it from source. The write lock
// is held for the duration, so concurrent queries wait rather than see a
// partially rebuilt index.
func (idx *Index) Rebuild(ctx context.Context, namespace string, source RecordSource) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	entries, err := source.IndexEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to collect entries for rebuild: %w", err)
	}

	if err := idx.repo.DeleteByNamespace(ctx, namespace); err != nil {
		return 0, fmt.Errorf("failed to clear namespace %s: %w", namespace, err)
	}

	if len(entries) == 0 {
		idx.logger.Warn("VectorIndex", "Rebuilt empty namespace", map[string]interface{}{
			"namespace": namespace,
		})
		return 0, nil
	}

	records := make([]*entity.VectorRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, entryToRecord(namespace, e))
	}
	if err := idx.repo.CreateBulk(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to repopulate namespace %s: %w", namespace, err)
	}

	idx.logger.Info("VectorIndex", "Namespace rebuilt", map[string]interface{}{
		"namespace": namespace,
		"records":   len(records),
	})
	return len(records), nil
}

func entryToRecord(namespace string, e Entry) *entity.VectorRecord {
	return &entity.VectorRecord{
		Namespace:     namespace,
		RecordKey:     e.Key,
		Document:      e.Document,
		Metadata:      sanitizeMetadata(e.Metadata),
		Embedding:     e.Vector,
		ChunkIndex:    e.ChunkIndex,
		UploadBatchId: e.UploadBatchId,
	}
}

// sanitizeMetadata flattens metadata to string values; nested or nil values
// would not round-trip through the jsonb column consistently.
func sanitizeMetadata(meta map[string]interface{}) map[string]string {
	if len(meta) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}
