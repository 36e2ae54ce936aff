package store

import "time"

// Metadata keys and provenance tags used across the retrieval pipeline.
const (
	MetaType          = "type"
	MetaPatientId     = "patient_id"
	MetaName          = "name"
	MetaDateOfBirth   = "date_of_birth"
	MetaChunkIndex    = "chunk_index"
	MetaUploadBatchId = "upload_batch_id"
	MetaFileName      = "file_name"

	TypePatientRecord   = "patient_record"
	TypeStagingDocument = "staging_document"
)

// Hit is a single retrieval result.
type Hit struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float64           `json:"score"` // 0.0 to 1.0
}

// Attachment tracks one file uploaded into a chat session.
type Attachment struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// SessionContext is the in-memory bookkeeping for an active chat session:
// which staging batch its uploads land in and what has been attached so far.
type SessionContext struct {
	SessionId     string       `json:"session_id"`
	UploadBatchId string       `json:"upload_batch_id"`
	Attachments   []Attachment `json:"attachments"`
	CreatedAt     time.Time    `json:"created_at"`
}
