package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Patient struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string         `gorm:"type:varchar(100);not null"`
	DateOfBirth     string         `gorm:"type:varchar(10);not null"` // YYYY-MM-DD
	Diagnosis       string         `gorm:"type:varchar(500)"`
	Prescription    string         `gorm:"type:varchar(1000)"`
	ConfidenceScore float64        `gorm:"default:0"`
	RawText         string         `gorm:"type:text"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Patient) TableName() string {
	return "patients"
}
