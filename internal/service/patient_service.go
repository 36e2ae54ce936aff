package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"healthix-be/internal/dto"
	"healthix-be/internal/entity"
	"healthix-be/internal/repository/specification"
	"healthix-be/internal/repository/unitofwork"
	"healthix-be/pkg/embedding"
	"healthix-be/pkg/events"
	pktNats "healthix-be/pkg/nats"
	"healthix-be/pkg/rag/index"
)

type IPatientService interface {
	Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.CreatePatientResponse, error)
	CreateFromExtraction(ctx context.Context, extracted *dto.ExtractedPatientData) (*dto.CreatePatientResponse, error)
	Update(ctx context.Context, req *dto.UpdatePatientRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
	Show(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	List(ctx context.Context, page, limit int) (*dto.PatientListResponse, error)
	Search(ctx context.Context, req *dto.SearchPatientsRequest) (*dto.PatientListResponse, error)
	Stats(ctx context.Context) (*dto.PatientStatsResponse, error)
	RefreshIndex(ctx context.Context) (*dto.RefreshIndexResponse, error)
}

type patientService struct {
	uowFactory        unitofwork.RepositoryFactory
	publisherService  IPublisherService
	embeddingProvider embedding.Provider
	vectorIndex       *index.Index
	eventPublisher    *pktNats.Publisher
	chunkSize         int
	chunkOverlap      int
}

func NewPatientService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	embeddingProvider embedding.Provider,
	vectorIndex *index.Index,
	eventPublisher *pktNats.Publisher,
	chunkSize int,
	chunkOverlap int,
) IPatientService {
	return &patientService{
		uowFactory:        uowFactory,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		vectorIndex:       vectorIndex,
		eventPublisher:    eventPublisher,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (c *patientService) Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.CreatePatientResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	patient := entity.Patient{
		Id:              uuid.New(),
		Name:            req.Name,
		DateOfBirth:     req.DateOfBirth,
		Diagnosis:       req.Diagnosis,
		Prescription:    req.Prescription,
		ConfidenceScore: req.ConfidenceScore,
		RawText:         req.RawText,
		CreatedAt:       time.Now(),
	}

	if err := uow.PatientRepository().Create(ctx, &patient); err != nil {
		return nil, err
	}

	c.publishEmbedMessage(ctx, patient.Id)

	if c.eventPublisher != nil {
		if err := c.eventPublisher.Publish(ctx, events.NewPatientCreated(patient.Id, patient.Name)); err != nil {
			log.Printf("[WARN] Failed to publish patient created event: %v", err)
		}
	}

	return &dto.CreatePatientResponse{Id: patient.Id}, nil
}

func (c *patientService) CreateFromExtraction(ctx context.Context, extracted *dto.ExtractedPatientData) (*dto.CreatePatientResponse, error) {
	req := &dto.CreatePatientRequest{
		Name:            stringOrDefault(extracted.Name, "Unknown Patient"),
		DateOfBirth:     stringOrDefault(extracted.DateOfBirth, ""),
		Diagnosis:       stringOrDefault(extracted.Diagnosis, ""),
		Prescription:    stringOrDefault(extracted.Prescription, ""),
		ConfidenceScore: extracted.ConfidenceScore,
		RawText:         extracted.RawText,
	}
	return c.Create(ctx, req)
}

func (c *patientService) Update(ctx context.Context, req *dto.UpdatePatientRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return err
	}
	if patient == nil {
		return fiber.NewError(fiber.StatusNotFound, "patient not found")
	}

	now := time.Now()
	patient.Name = req.Name
	patient.DateOfBirth = req.DateOfBirth
	patient.Diagnosis = req.Diagnosis
	patient.Prescription = req.Prescription
	patient.ConfidenceScore = req.ConfidenceScore
	patient.RawText = req.RawText
	patient.UpdatedAt = &now

	if err := uow.PatientRepository().Update(ctx, patient); err != nil {
		return err
	}

	// Re-index with the new text
	c.publishEmbedMessage(ctx, patient.Id)

	if c.eventPublisher != nil {
		if err := c.eventPublisher.Publish(ctx, events.NewPatientUpdated(patient.Id)); err != nil {
			log.Printf("[WARN] Failed to publish patient updated event: %v", err)
		}
	}

	return nil
}

func (c *patientService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if patient == nil {
		return fiber.NewError(fiber.StatusNotFound, "patient not found")
	}

	if err := uow.PatientRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := c.vectorIndex.DeleteRecord(ctx, index.NamespacePatientRecords, patientRecordKey(id)); err != nil {
		log.Printf("[WARN] Failed to remove index entries for patient %s: %v", id, err)
	}

	if c.eventPublisher != nil {
		if err := c.eventPublisher.Publish(ctx, events.NewPatientDeleted(id)); err != nil {
			log.Printf("[WARN] Failed to publish patient deleted event: %v", err)
		}
	}

	return nil
}

func (c *patientService) Show(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	patient, err := uow.PatientRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "patient not found")
	}

	return patientToResponse(patient), nil
}

func (c *patientService) List(ctx context.Context, page, limit int) (*dto.PatientListResponse, error) {
	page, limit = normalizePaging(page, limit)
	uow := c.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.PatientRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	patients, err := uow.PatientRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	return buildPatientList(patients, total, page, limit), nil
}

func (c *patientService) Search(ctx context.Context, req *dto.SearchPatientsRequest) (*dto.PatientListResponse, error) {
	page, limit := normalizePaging(req.Page, req.Limit)
	uow := c.uowFactory.NewUnitOfWork(ctx)

	term := strings.TrimSpace(req.Query)
	if term == "" {
		return c.List(ctx, page, limit)
	}

	total, err := uow.PatientRepository().Count(ctx, specification.NameOrDiagnosisLike{Term: term})
	if err != nil {
		return nil, err
	}

	patients, err := uow.PatientRepository().FindAll(ctx,
		specification.NameOrDiagnosisLike{Term: term},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	if err != nil {
		return nil, err
	}

	return buildPatientList(patients, total, page, limit), nil
}

func (c *patientService) Stats(ctx context.Context) (*dto.PatientStatsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	total, err := uow.PatientRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := uow.PatientRepository().Count(ctx, specification.CreatedSince{Since: time.Now().AddDate(0, 0, -30)})
	if err != nil {
		return nil, err
	}

	indexed, err := c.vectorIndex.Count(ctx, index.NamespacePatientRecords)
	if err != nil {
		return nil, err
	}

	patients, err := uow.PatientRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	diagnoses := make(map[string]int64)
	for _, p := range patients {
		d := strings.TrimSpace(p.Diagnosis)
		if d != "" {
			diagnoses[d]++
		}
	}

	backend := "none"
	if c.embeddingProvider != nil {
		backend = c.embeddingProvider.Name()
	}

	return &dto.PatientStatsResponse{
		TotalPatients:    total,
		IndexedChunks:    indexed,
		RecentPatients:   recent,
		CommonDiagnoses:  diagnoses,
		EmbeddingBackend: backend,
	}, nil
}

func (c *patientService) RefreshIndex(ctx context.Context) (*dto.RefreshIndexResponse, error) {
	source := &patientIndexSource{
		uowFactory:        c.uowFactory,
		embeddingProvider: c.embeddingProvider,
		chunkSize:         c.chunkSize,
		chunkOverlap:      c.chunkOverlap,
	}

	count, err := c.vectorIndex.Rebuild(ctx, index.NamespacePatientRecords, source)
	if err != nil {
		return nil, err
	}

	if c.eventPublisher != nil {
		if err := c.eventPublisher.Publish(ctx, events.NewVectorIndexRebuilt(index.NamespacePatientRecords, count)); err != nil {
			log.Printf("[WARN] Failed to publish index rebuilt event: %v", err)
		}
	}

	return &dto.RefreshIndexResponse{IndexedRecords: count}, nil
}

func (c *patientService) publishEmbedMessage(ctx context.Context, patientId uuid.UUID) {
	msgPayload := dto.PublishEmbedPatientMessage{PatientId: patientId}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		log.Printf("[ERROR] Failed to marshal embed message for patient %s: %v", patientId, err)
		return
	}
	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		log.Printf("[ERROR] Failed to publish embed message for patient %s: %v", patientId, err)
	}
}

func patientToResponse(p *entity.Patient) *dto.PatientResponse {
	return &dto.PatientResponse{
		Id:              p.Id,
		Name:            p.Name,
		DateOfBirth:     p.DateOfBirth,
		Diagnosis:       p.Diagnosis,
		Prescription:    p.Prescription,
		ConfidenceScore: p.ConfidenceScore,
		RawText:         p.RawText,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func buildPatientList(patients []*entity.Patient, total int64, page, limit int) *dto.PatientListResponse {
	responses := make([]dto.PatientResponse, 0, len(patients))
	for _, p := range patients {
		responses = append(responses, *patientToResponse(p))
	}
	return &dto.PatientListResponse{
		Patients: responses,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func stringOrDefault(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}
