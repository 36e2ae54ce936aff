package entity

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	Id              uuid.UUID
	Name            string
	DateOfBirth     string
	Diagnosis       string
	Prescription    string
	ConfidenceScore float64
	RawText         string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
