package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"healthix-be/internal/constant"
	"healthix-be/internal/dto"
	"healthix-be/internal/entity"
	"healthix-be/internal/repository/memory"
	"healthix-be/internal/repository/specification"
	"healthix-be/internal/repository/unitofwork"
	"healthix-be/pkg/embedding"
	"healthix-be/pkg/llm"
	"healthix-be/pkg/rag/chunk"
	"healthix-be/pkg/rag/contextbuilder"
	"healthix-be/pkg/rag/index"
	"healthix-be/pkg/rag/retriever"
	"healthix-be/pkg/store"
)

type IChatService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	UploadFile(ctx context.Context, sessionId uuid.UUID, file llm.FileData) (*dto.UploadFileResponse, error)
	GetAttachments(ctx context.Context, sessionId uuid.UUID) ([]*dto.SessionAttachmentResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	sessionRepo       *memory.SessionContextRepository
	documentService   IDocumentService
	embeddingProvider embedding.Provider
	vectorIndex       *index.Index
	retrievalEngine   *retriever.Engine
	assembler         *contextbuilder.Assembler
	llmProvider       llm.LLMProvider
	topK              int
	chunkSize         int
	chunkOverlap      int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionContextRepository,
	documentService IDocumentService,
	embeddingProvider embedding.Provider,
	vectorIndex *index.Index,
	retrievalEngine *retriever.Engine,
	assembler *contextbuilder.Assembler,
	llmProvider llm.LLMProvider,
	topK int,
	chunkSize int,
	chunkOverlap int,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		sessionRepo:       sessionRepo,
		documentService:   documentService,
		embeddingProvider: embeddingProvider,
		vectorIndex:       vectorIndex,
		retrievalEngine:   retrievalEngine,
		assembler:         assembler,
		llmProvider:       llmProvider,
		topK:              topK,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (c *chatService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:            uuid.New(),
		Title:         "New Conversation",
		UploadBatchId: uuid.NewString(),
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	welcome := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          constant.ChatWelcomeMessage,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &welcome); err != nil {
		return nil, err
	}

	c.sessionRepo.Save(&store.SessionContext{
		SessionId:     session.Id.String(),
		UploadBatchId: session.UploadBatchId,
		Attachments:   []store.Attachment{},
		CreatedAt:     session.CreatedAt,
	})

	return &dto.CreateSessionResponse{
		Id:             session.Id,
		UploadBatchId:  session.UploadBatchId,
		WelcomeMessage: welcome.Chat,
	}, nil
}

func (c *chatService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	return responses, nil
}

func (c *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Chat:      m.Chat,
			CreatedAt: m.CreatedAt,
		})
	}
	return responses, nil
}

func (c *chatService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: req.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          req.Chat,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}

	hits, err := c.retrievalEngine.Retrieve(ctx, req.Chat, c.topK, session.UploadBatchId)
	if err != nil {
		return nil, err
	}

	contextBlock := c.assembler.Assemble(hits)
	prompt := fmt.Sprintf(constant.ChatPromptTemplate, contextBlock, req.Chat)

	reply, err := c.llmProvider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}

	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          reply,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return nil, err
	}

	// First user message names the session
	if session.Title == "New Conversation" {
		now := time.Now()
		session.Title = truncateTitle(req.Chat, 60)
		session.UpdatedAt = &now
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			log.Printf("[WARN] Failed to update session title: %v", err)
		}
	}

	sources, patientIds := buildSources(hits)

	return &dto.SendChatResponse{
		ChatSessionId: session.Id,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        modelMessage.Id,
			Chat:      modelMessage.Chat,
			Role:      modelMessage.Role,
			CreatedAt: modelMessage.CreatedAt,
		},
		Sources:    sources,
		PatientIds: patientIds,
	}, nil
}

func (c *chatService) UploadFile(ctx context.Context, sessionId uuid.UUID, file llm.FileData) (*dto.UploadFileResponse, error) {
	if err := c.documentService.ValidateFile(file.Name, file.MimeType, int64(len(file.Content))); err != nil {
		return nil, err
	}
	if c.embeddingProvider == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "no embedding provider configured, attachments cannot be indexed")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}

	attachmentId := uuid.NewString()

	text, err := c.processedText(ctx, file)
	if err != nil {
		return nil, err
	}

	chunks := chunk.Split(text, c.chunkSize, c.chunkOverlap)
	if len(chunks) > 0 {
		vectors, err := c.embeddingProvider.Embed(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("embed attachment %s: %w", file.Name, err)
		}

		entries := make([]index.Entry, 0, len(chunks))
		for i, ch := range chunks {
			entries = append(entries, index.Entry{
				Key:      "attachment_" + attachmentId,
				Document: ch,
				Vector:   vectors[i],
				Metadata: map[string]interface{}{
					store.MetaType:          store.TypeStagingDocument,
					store.MetaFileName:      file.Name,
					store.MetaChunkIndex:    i,
					store.MetaUploadBatchId: session.UploadBatchId,
				},
				ChunkIndex:    i,
				UploadBatchId: session.UploadBatchId,
			})
		}
		if err := c.vectorIndex.Add(ctx, index.NamespaceStagingDocuments, entries); err != nil {
			return nil, err
		}
	}

	attachment := store.Attachment{
		Id:         attachmentId,
		Name:       file.Name,
		Type:       file.MimeType,
		Size:       int64(len(file.Content)),
		ChunkCount: len(chunks),
		UploadedAt: time.Now(),
	}
	if !c.sessionRepo.AddAttachment(sessionId.String(), attachment) {
		// Memory entry expired; recreate it from the durable session row
		c.sessionRepo.Save(&store.SessionContext{
			SessionId:     sessionId.String(),
			UploadBatchId: session.UploadBatchId,
			Attachments:   []store.Attachment{attachment},
			CreatedAt:     session.CreatedAt,
		})
	}

	return &dto.UploadFileResponse{
		AttachmentId: attachmentId,
		FileName:     file.Name,
		ChunkCount:   len(chunks),
	}, nil
}

func (c *chatService) GetAttachments(ctx context.Context, sessionId uuid.UUID) ([]*dto.SessionAttachmentResponse, error) {
	sessionCtx, ok := c.sessionRepo.Get(sessionId.String())
	if !ok {
		return []*dto.SessionAttachmentResponse{}, nil
	}

	responses := make([]*dto.SessionAttachmentResponse, 0, len(sessionCtx.Attachments))
	for _, a := range sessionCtx.Attachments {
		responses = append(responses, &dto.SessionAttachmentResponse{
			Id:         a.Id,
			Name:       a.Name,
			Type:       a.Type,
			Size:       a.Size,
			ChunkCount: a.ChunkCount,
			UploadedAt: a.UploadedAt,
		})
	}
	return responses, nil
}

func (c *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return fiber.NewError(fiber.StatusNotFound, "chat session not found")
	}

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	if err := c.vectorIndex.DropBatch(ctx, index.NamespaceStagingDocuments, session.UploadBatchId); err != nil {
		log.Printf("[WARN] Failed to drop staging batch %s: %v", session.UploadBatchId, err)
	}

	c.sessionRepo.Delete(sessionId.String())
	return nil
}

// processedText extracts plain text from the file, caching by content hash
// so a re-sent file skips the extraction backend.
func (c *chatService) processedText(ctx context.Context, file llm.FileData) (string, error) {
	contentKey := fmt.Sprintf("%x", sha256.Sum256(file.Content))
	if text, found := c.sessionRepo.GetProcessedText(contentKey); found {
		return text, nil
	}

	text, err := c.documentService.ExtractText(ctx, file)
	if err != nil {
		return "", err
	}
	c.sessionRepo.CacheProcessedText(contentKey, text)
	return text, nil
}

func buildSources(hits []store.Hit) ([]dto.SourceDTO, []string) {
	sources := make([]dto.SourceDTO, 0, len(hits))
	seenPatients := make(map[string]bool)
	patientIds := make([]string, 0)

	for _, h := range hits {
		hitType := h.Metadata[store.MetaType]
		label := h.Metadata[store.MetaName]
		if label == "" {
			label = h.Metadata[store.MetaFileName]
		}
		sources = append(sources, dto.SourceDTO{
			Type:     hitType,
			Label:    label,
			Score:    h.Score,
			FileName: h.Metadata[store.MetaFileName],
		})

		if id := h.Metadata[store.MetaPatientId]; id != "" && !seenPatients[id] {
			seenPatients[id] = true
			patientIds = append(patientIds, id)
		}
	}
	return sources, patientIds
}

func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
