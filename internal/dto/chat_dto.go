package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id             uuid.UUID `json:"id"`
	UploadBatchId  string    `json:"upload_batch_id"`
	WelcomeMessage string    `json:"welcome_message"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Chat          string    `json:"chat" validate:"required"`
}

type SourceDTO struct {
	Type     string  `json:"type"` // "patient_record" | "staging_document"
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	FileName string  `json:"file_name,omitempty"`
}

type SendChatResponseChat struct {
	Id        uuid.UUID `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID             `json:"chat_session_id"`
	Sent          *SendChatResponseChat `json:"sent"`
	Reply         *SendChatResponseChat `json:"reply"`
	Sources       []SourceDTO           `json:"sources,omitempty"`
	PatientIds    []string              `json:"patient_ids,omitempty"`
}

type UploadFileResponse struct {
	AttachmentId string `json:"attachment_id"`
	FileName     string `json:"file_name"`
	ChunkCount   int    `json:"chunk_count"`
}

type SessionAttachmentResponse struct {
	Id         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}
