package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// VectorRecord is one indexed chunk. Namespace separates the durable patient
// collection from the per-session staging collection; both live in one table
// so the retrieval layer can treat "which collection" as data.
type VectorRecord struct {
	Id            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Namespace     string            `gorm:"type:varchar(64);not null;index"`
	RecordKey     string            `gorm:"type:varchar(128);not null;index"` // e.g. patient_<id>
	Document      string            `gorm:"type:text"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding     pgvector.Vector   `gorm:"type:vector(768)"` // nomic-embed-text and text-embedding-004 are both 768-dim
	ChunkIndex    int               `gorm:"default:0"`
	UploadBatchId string            `gorm:"type:varchar(64);index"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`
}

func (VectorRecord) TableName() string {
	return "vector_records"
}
