package implementation

import (
	"context"

	"healthix-be/internal/entity"
	"healthix-be/internal/mapper"
	"healthix-be/internal/model"
	"healthix-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type VectorRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VectorRecordMapper
}

func NewVectorRecordRepository(db *gorm.DB) contract.VectorRecordRepository {
	return &VectorRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewVectorRecordMapper(),
	}
}

func (r *VectorRecordRepositoryImpl) CreateBulk(ctx context.Context, records []*entity.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]*model.VectorRecord, len(records))
	for i, rec := range records {
		models[i] = r.mapper.ToModel(rec)
	}

	// Single transaction so a batch is all-or-nothing.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(models).Error
	})
	if err != nil {
		return err
	}

	for i, m := range models {
		*records[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *VectorRecordRepositoryImpl) ReplaceForRecordKey(ctx context.Context, namespace, recordKey string, records []*entity.VectorRecord) error {
	models := make([]*model.VectorRecord, len(records))
	for i, rec := range records {
		models[i] = r.mapper.ToModel(rec)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("namespace = ? AND record_key = ?", namespace, recordKey).
			Delete(&model.VectorRecord{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(models).Error
	})
}

func (r *VectorRecordRepositoryImpl) DeleteByNamespace(ctx context.Context, namespace string) error {
	return r.db.WithContext(ctx).Where("namespace = ?", namespace).Delete(&model.VectorRecord{}).Error
}

func (r *VectorRecordRepositoryImpl) DeleteByRecordKey(ctx context.Context, namespace, recordKey string) error {
	return r.db.WithContext(ctx).
		Where("namespace = ? AND record_key = ?", namespace, recordKey).
		Delete(&model.VectorRecord{}).Error
}

func (r *VectorRecordRepositoryImpl) DeleteByUploadBatch(ctx context.Context, namespace, uploadBatchId string) error {
	return r.db.WithContext(ctx).
		Where("namespace = ? AND upload_batch_id = ?", namespace, uploadBatchId).
		Delete(&model.VectorRecord{}).Error
}

func (r *VectorRecordRepositoryImpl) Count(ctx context.Context, namespace string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.VectorRecord{}).
		Where("namespace = ?", namespace).Count(&count).Error
	return count, err
}

func (r *VectorRecordRepositoryImpl) SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int, uploadBatchId string) ([]*contract.ScoredVectorRecord, error) {
	if limit <= 0 {
		limit = 5
	}

	// pgvector cosine distance: embedding <=> vector. Similarity = 1 - distance.
	type result struct {
		model.VectorRecord
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("vector_records").
		Select("vector_records.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("namespace = ?", namespace)
	if uploadBatchId != "" {
		query = query.Where("upload_batch_id = ?", uploadBatchId)
	}

	err := query.
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredVectorRecord, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredVectorRecord{
			Record:     r.mapper.ToEntity(&res.VectorRecord),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
