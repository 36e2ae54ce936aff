package dto

import "github.com/google/uuid"

// ExtractedPatientData mirrors the JSON the extraction model is asked to
// return. Pointer fields distinguish "not found" from empty strings.
type ExtractedPatientData struct {
	Name            *string `json:"name"`
	DateOfBirth     *string `json:"date_of_birth"`
	Diagnosis       *string `json:"diagnosis"`
	Prescription    *string `json:"prescription"`
	ConfidenceScore float64 `json:"confidence_score"`
	RawText         string  `json:"raw_text"`
}

type ProcessDocumentResponse struct {
	Extracted          ExtractedPatientData `json:"extracted"`
	DocumentsProcessed int                  `json:"documents_processed"`
}

type CreatePatientFromDocumentsResponse struct {
	PatientId          uuid.UUID            `json:"patient_id"`
	Extracted          ExtractedPatientData `json:"extracted"`
	DocumentsProcessed int                  `json:"documents_processed"`
}

type SupportedTypesResponse struct {
	AllowedTypes []string `json:"allowed_types"`
	MaxFileSize  int64    `json:"max_file_size"`
}
