package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportReport records a generated spreadsheet for a review session.
type ExportReport struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	JobPostingID int64     `gorm:"not null" json:"job_posting_id"`
	Filename     string    `gorm:"type:text" json:"filename"`
	FilePath     string    `gorm:"type:text" json:"-"`
	Applicants   int       `json:"applicants"`
	CreatedAt    time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (r *ExportReport) TableName() string {
	return "export_reports"
}
