package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewSession is one evaluator's console state for one job posting.
type ReviewSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobPostingID int64     `gorm:"not null;index" json:"job_posting_id"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Overrides []ReviewOverride `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ReviewSession) TableName() string {
	return "review_sessions"
}

// ReviewOverride is the persisted form of a LocalOverride. It belongs to the
// console; upstream only learns about it through an explicit save.
type ReviewOverride struct {
	SessionID   uuid.UUID     `gorm:"type:uuid;primaryKey" json:"session_id"`
	ApplicantID int64         `gorm:"primaryKey" json:"applicant_id"`
	Status      DisplayStatus `gorm:"type:text" json:"status"`
	Memo        string        `gorm:"type:text" json:"memo"`
	UpdatedAt   time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ReviewOverride) TableName() string {
	return "review_overrides"
}

// LocalOverride shadows the remote status of one applicant. An empty Status
// means only a memo was written.
type LocalOverride struct {
	Status DisplayStatus `json:"status,omitempty"`
	Memo   string        `json:"memo,omitempty"`
}

// OverrideMap is keyed by applicant ID.
type OverrideMap map[int64]LocalOverride

func (m OverrideMap) Clone() OverrideMap {
	out := make(OverrideMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func OverridesFromRecords(records []ReviewOverride) OverrideMap {
	m := make(OverrideMap, len(records))
	for _, r := range records {
		m[r.ApplicantID] = LocalOverride{Status: r.Status, Memo: r.Memo}
	}
	return m
}
