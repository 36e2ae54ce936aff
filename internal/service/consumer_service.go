package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"healthix-be/internal/dto"
	"healthix-be/internal/repository/specification"
	"healthix-be/internal/repository/unitofwork"
	"healthix-be/pkg/embedding"
	"healthix-be/pkg/rag/chunk"
	"healthix-be/pkg/rag/index"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	vectorIndex       *index.Index
	chunkSize         int
	chunkOverlap      int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	vectorIndex *index.Index,
	chunkSize int,
	chunkOverlap int,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		vectorIndex:       vectorIndex,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedPatientMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.embeddingProvider == nil {
		// Retrying will never succeed within this process lifetime
		log.Printf("[WARN] No embedding provider, skipping indexing for PatientId: %s", payload.PatientId)
		msg.Ack()
		return
	}

	log.Printf("[INFO] Processing patient embedding for PatientId: %s", payload.PatientId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: payload.PatientId})
	if err != nil {
		log.Printf("[ERROR] Failed to get patient %s: %v", payload.PatientId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if patient == nil {
		// Patient deleted before the message was consumed? Ack.
		log.Printf("[ERROR] Patient not found: %s", payload.PatientId)
		msg.Ack()
		return
	}

	content := buildPatientText(patient)
	chunks := chunk.Split(content, cs.chunkSize, cs.chunkOverlap)
	log.Printf("[INFO] Patient text split into %d chunks", len(chunks))

	if len(chunks) == 0 {
		msg.Ack()
		return
	}

	vectors, err := cs.embeddingProvider.Embed(ctx, chunks)
	if err != nil {
		log.Printf("[ERROR] Failed to generate embeddings for patient %s: %v", payload.PatientId, err)
		msg.Nack()
		return
	}

	entries := patientIndexEntries(patient, chunks, vectors)
	if err := cs.vectorIndex.ReplaceRecord(ctx, index.NamespacePatientRecords, patientRecordKey(patient.Id), entries); err != nil {
		log.Printf("[ERROR] Failed to index patient %s: %v", payload.PatientId, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Patient indexed: %d chunks for PatientId: %s", len(entries), payload.PatientId)
	msg.Ack()
}
