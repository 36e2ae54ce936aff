package specification

import (
	"time"

	"gorm.io/gorm"
)

// NameOrDiagnosisLike matches the keyword-search endpoint: case-insensitive
// substring on name or diagnosis.
type NameOrDiagnosisLike struct {
	Term string
}

func (s NameOrDiagnosisLike) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Term + "%"
	return db.Where("name ILIKE ? OR diagnosis ILIKE ?", pattern, pattern)
}

// CreatedSince filters records created at or after the given time.
type CreatedSince struct {
	Since time.Time
}

func (s CreatedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Since)
}
