package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"healthix-be/internal/entity"
	"healthix-be/internal/repository/unitofwork"
	"healthix-be/pkg/embedding"
	"healthix-be/pkg/rag/chunk"
	"healthix-be/pkg/rag/index"
	"healthix-be/pkg/store"
)

func patientRecordKey(id uuid.UUID) string {
	return "patient_" + id.String()
}

// buildPatientText renders a patient row as the flat text that gets chunked
// and embedded. The field labels double as retrieval anchors.
func buildPatientText(p *entity.Patient) string {
	return fmt.Sprintf(
		"Patient Name: %s | Date of Birth: %s | Diagnosis: %s | Prescription: %s",
		p.Name, p.DateOfBirth, p.Diagnosis, p.Prescription,
	)
}

func patientIndexEntries(p *entity.Patient, chunks []string, vectors [][]float32) []index.Entry {
	entries := make([]index.Entry, 0, len(chunks))
	for i, c := range chunks {
		entries = append(entries, index.Entry{
			Key:      patientRecordKey(p.Id),
			Document: c,
			Vector:   vectors[i],
			Metadata: map[string]interface{}{
				store.MetaType:        store.TypePatientRecord,
				store.MetaPatientId:   p.Id.String(),
				store.MetaName:        p.Name,
				store.MetaDateOfBirth: p.DateOfBirth,
				store.MetaChunkIndex:  i,
			},
			ChunkIndex: i,
		})
	}
	return entries
}

// patientIndexSource feeds full rebuilds of the patient namespace.
type patientIndexSource struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	chunkSize         int
	chunkOverlap      int
}

func (s *patientIndexSource) IndexEntries(ctx context.Context) ([]index.Entry, error) {
	if s.embeddingProvider == nil {
		return nil, fmt.Errorf("no embedding provider configured, cannot rebuild index")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	patients, err := uow.PatientRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]index.Entry, 0, len(patients))
	for _, p := range patients {
		chunks := chunk.Split(buildPatientText(p), s.chunkSize, s.chunkOverlap)
		if len(chunks) == 0 {
			continue
		}
		vectors, err := s.embeddingProvider.Embed(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("embed patient %s: %w", p.Id, err)
		}
		entries = append(entries, patientIndexEntries(p, chunks, vectors)...)
	}
	return entries, nil
}
