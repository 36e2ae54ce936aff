package contract

import (
	"context"

	"healthix-be/internal/entity"
)

// ScoredVectorRecord wraps a VectorRecord with its similarity score.
type ScoredVectorRecord struct {
	Record     *entity.VectorRecord
	Similarity float64 // 0.0 to 1.0 (1.0 = identical), derived as 1 - cosine distance
}

type VectorRecordRepository interface {
	// CreateBulk inserts a batch atomically: either every record lands or none do.
	CreateBulk(ctx context.Context, records []*entity.VectorRecord) error
	// ReplaceForRecordKey atomically swaps all records under (namespace, recordKey)
	// for the given batch.
	ReplaceForRecordKey(ctx context.Context, namespace, recordKey string, records []*entity.VectorRecord) error
	DeleteByNamespace(ctx context.Context, namespace string) error
	DeleteByRecordKey(ctx context.Context, namespace, recordKey string) error
	DeleteByUploadBatch(ctx context.Context, namespace, uploadBatchId string) error
	Count(ctx context.Context, namespace string) (int64, error)
	// SearchSimilar returns up to limit records in namespace ordered by
	// descending cosine similarity to the query embedding. An empty
	// uploadBatchId matches all batches.
	SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int, uploadBatchId string) ([]*ScoredVectorRecord, error)
}
