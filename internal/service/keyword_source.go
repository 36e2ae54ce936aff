package service

import (
	"context"

	"healthix-be/internal/repository/unitofwork"
	"healthix-be/pkg/rag/retriever"
	"healthix-be/pkg/store"
)

// patientKeywordSource backs the retrieval fallback path with direct rows
// from the patients table, so chat still works when embeddings are down.
type patientKeywordSource struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPatientKeywordSource(uowFactory unitofwork.RepositoryFactory) retriever.KeywordSource {
	return &patientKeywordSource{uowFactory: uowFactory}
}

func (s *patientKeywordSource) KeywordRecords(ctx context.Context) ([]retriever.KeywordRecord, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	patients, err := uow.PatientRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]retriever.KeywordRecord, 0, len(patients))
	for _, p := range patients {
		records = append(records, retriever.KeywordRecord{
			Content: buildPatientText(p),
			Fields:  []string{p.Name, p.DateOfBirth, p.Diagnosis, p.Prescription},
			Metadata: map[string]string{
				store.MetaType:      store.TypePatientRecord,
				store.MetaPatientId: p.Id.String(),
				store.MetaName:      p.Name,
			},
		})
	}
	return records, nil
}
