package mapper

import (
	"healthix-be/internal/entity"
	"healthix-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SessionToModel(e *entity.ChatSession) *model.ChatSession {
	s := &model.ChatSession{
		Id:            e.Id,
		Title:         e.Title,
		UploadBatchId: e.UploadBatchId,
		CreatedAt:     e.CreatedAt,
	}
	if e.UpdatedAt != nil {
		s.UpdatedAt = *e.UpdatedAt
	}
	return s
}

func (m *ChatMapper) SessionToEntity(s *model.ChatSession) *entity.ChatSession {
	e := &entity.ChatSession{
		Id:            s.Id,
		Title:         s.Title,
		UploadBatchId: s.UploadBatchId,
		CreatedAt:     s.CreatedAt,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt
		e.UpdatedAt = &updatedAt
	}
	return e
}

func (m *ChatMapper) MessageToModel(e *entity.ChatMessage) *model.ChatMessage {
	return &model.ChatMessage{
		Id:            e.Id,
		Chat:          e.Chat,
		Role:          e.Role,
		ChatSessionId: e.ChatSessionId,
		CreatedAt:     e.CreatedAt,
	}
}

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	return &entity.ChatMessage{
		Id:            msg.Id,
		Chat:          msg.Chat,
		Role:          msg.Role,
		ChatSessionId: msg.ChatSessionId,
		CreatedAt:     msg.CreatedAt,
	}
}
