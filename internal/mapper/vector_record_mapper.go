package mapper

import (
	"fmt"

	"healthix-be/internal/entity"
	"healthix-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type VectorRecordMapper struct{}

func NewVectorRecordMapper() *VectorRecordMapper {
	return &VectorRecordMapper{}
}

func (m *VectorRecordMapper) ToModel(e *entity.VectorRecord) *model.VectorRecord {
	metadata := make(datatypes.JSONMap, len(e.Metadata))
	for k, v := range e.Metadata {
		metadata[k] = v
	}
	return &model.VectorRecord{
		Id:            e.Id,
		Namespace:     e.Namespace,
		RecordKey:     e.RecordKey,
		Document:      e.Document,
		Metadata:      metadata,
		Embedding:     pgvector.NewVector(e.Embedding),
		ChunkIndex:    e.ChunkIndex,
		UploadBatchId: e.UploadBatchId,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *VectorRecordMapper) ToEntity(r *model.VectorRecord) *entity.VectorRecord {
	metadata := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		if s, ok := v.(string); ok {
			metadata[k] = s
		} else {
			metadata[k] = fmt.Sprintf("%v", v)
		}
	}
	return &entity.VectorRecord{
		Id:            r.Id,
		Namespace:     r.Namespace,
		RecordKey:     r.RecordKey,
		Document:      r.Document,
		Metadata:      metadata,
		Embedding:     r.Embedding.Slice(),
		ChunkIndex:    r.ChunkIndex,
		UploadBatchId: r.UploadBatchId,
		CreatedAt:     r.CreatedAt,
	}
}
