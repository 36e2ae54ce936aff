package mapper

import (
	"healthix-be/internal/entity"
	"healthix-be/internal/model"
)

type PatientMapper struct{}

func NewPatientMapper() *PatientMapper {
	return &PatientMapper{}
}

func (m *PatientMapper) ToModel(e *entity.Patient) *model.Patient {
	p := &model.Patient{
		Id:              e.Id,
		Name:            e.Name,
		DateOfBirth:     e.DateOfBirth,
		Diagnosis:       e.Diagnosis,
		Prescription:    e.Prescription,
		ConfidenceScore: e.ConfidenceScore,
		RawText:         e.RawText,
		CreatedAt:       e.CreatedAt,
	}
	if e.UpdatedAt != nil {
		p.UpdatedAt = *e.UpdatedAt
	}
	return p
}

func (m *PatientMapper) ToEntity(p *model.Patient) *entity.Patient {
	e := &entity.Patient{
		Id:              p.Id,
		Name:            p.Name,
		DateOfBirth:     p.DateOfBirth,
		Diagnosis:       p.Diagnosis,
		Prescription:    p.Prescription,
		ConfidenceScore: p.ConfidenceScore,
		RawText:         p.RawText,
		CreatedAt:       p.CreatedAt,
	}
	if !p.UpdatedAt.IsZero() {
		updatedAt := p.UpdatedAt
		e.UpdatedAt = &updatedAt
	}
	return e
}
