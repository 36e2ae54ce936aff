package entity

import (
	"time"

	"github.com/google/uuid"
)

type VectorRecord struct {
	Id            uuid.UUID
	Namespace     string
	RecordKey     string
	Document      string
	Metadata      map[string]string
	Embedding     []float32
	ChunkIndex    int
	UploadBatchId string
	CreatedAt     time.Time
}
