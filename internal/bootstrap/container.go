package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"healthix-be/internal/config"
	"healthix-be/internal/controller"
	"healthix-be/internal/pkg/logger"
	"healthix-be/internal/repository/memory"
	"healthix-be/internal/repository/unitofwork"
	"healthix-be/internal/service"
	"healthix-be/pkg/embedding"
	"healthix-be/pkg/llm/factory"
	pktNats "healthix-be/pkg/nats"
	"healthix-be/pkg/rag/contextbuilder"
	"healthix-be/pkg/rag/index"
	"healthix-be/pkg/rag/retriever"
)

type Container struct {
	// Controllers
	PatientController  controller.IPatientController
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for the reindex command
	PatientService service.IPatientService

	// Exposed for graceful shutdown
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider := embedding.Select(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbeddingModel,
		cfg.Ai.GeminiAPIKey,
	)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	sessionRepo := memory.NewSessionContextRepository()

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 5. Retrieval Pipeline
	vectorRepo := uowFactory.NewUnitOfWork(context.Background()).VectorRecordRepository()
	vectorIndex := index.NewIndex(vectorRepo, sysLogger)
	keywordSource := service.NewPatientKeywordSource(uowFactory)
	retrievalEngine := retriever.NewEngine(
		embedderOrNil(embeddingProvider),
		vectorIndex,
		keywordSource,
		sysLogger,
		time.Duration(cfg.Rag.QueryTimeoutMs)*time.Millisecond,
	)
	assembler := contextbuilder.NewAssembler()

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Rag.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Rag.EmbedTopic,
		uowFactory,
		embeddingProvider,
		vectorIndex,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	patientService := service.NewPatientService(
		uowFactory,
		publisherService,
		embeddingProvider,
		vectorIndex,
		natsPub,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	documentService := service.NewDocumentService(
		llmProvider,
		natsPub,
		cfg.Upload.MaxFileSize,
		cfg.Upload.AllowedTypes,
	)

	chatService := service.NewChatService(
		uowFactory,
		sessionRepo,
		documentService,
		embeddingProvider,
		vectorIndex,
		retrievalEngine,
		assembler,
		llmProvider,
		cfg.Rag.TopK,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	// 7. Controllers
	return &Container{
		PatientController:  controller.NewPatientController(patientService),
		DocumentController: controller.NewDocumentController(documentService, patientService),
		ChatController:     controller.NewChatController(chatService),

		ConsumerService: consumerService,
		PatientService:  patientService,
		NatsPublisher:   natsPub,
	}
}

// embedderOrNil keeps a typed-nil Provider from masquerading as a non-nil
// retriever.Embedder interface value.
func embedderOrNil(p embedding.Provider) retriever.Embedder {
	if p == nil {
		return nil
	}
	return p
}
