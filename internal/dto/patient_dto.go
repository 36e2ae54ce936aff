package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePatientRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	DateOfBirth     string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Diagnosis       string  `json:"diagnosis" validate:"max=500"`
	Prescription    string  `json:"prescription" validate:"max=1000"`
	ConfidenceScore float64 `json:"confidence_score" validate:"gte=0,lte=1"`
	RawText         string  `json:"raw_text"`
}

type UpdatePatientRequest struct {
	Id              uuid.UUID
	Name            string  `json:"name" validate:"required,max=100"`
	DateOfBirth     string  `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Diagnosis       string  `json:"diagnosis" validate:"max=500"`
	Prescription    string  `json:"prescription" validate:"max=1000"`
	ConfidenceScore float64 `json:"confidence_score" validate:"gte=0,lte=1"`
	RawText         string  `json:"raw_text"`
}

type PatientResponse struct {
	Id              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	DateOfBirth     string     `json:"date_of_birth"`
	Diagnosis       string     `json:"diagnosis"`
	Prescription    string     `json:"prescription"`
	ConfidenceScore float64    `json:"confidence_score"`
	RawText         string     `json:"raw_text,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

type CreatePatientResponse struct {
	Id uuid.UUID `json:"id"`
}

type SearchPatientsRequest struct {
	Query string `query:"q"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

type PatientStatsResponse struct {
	TotalPatients    int64            `json:"total_patients"`
	IndexedChunks    int64            `json:"indexed_chunks"`
	RecentPatients   int64            `json:"recent_patients"` // created in the last 30 days
	CommonDiagnoses  map[string]int64 `json:"common_diagnoses"`
	EmbeddingBackend string           `json:"embedding_backend"`
}

type RefreshIndexResponse struct {
	IndexedRecords int `json:"indexed_records"`
}
