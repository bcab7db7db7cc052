package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/applicant-review/internal/models"
)

var ErrNotFound = errors.New("record not found")

type SessionRepository interface {
	Create(session *models.ReviewSession) error
	FindByID(id uuid.UUID) (*models.ReviewSession, error)
	Touch(id uuid.UUID) error
	Delete(id uuid.UUID) error
	UpsertOverride(override *models.ReviewOverride) error
	FindOverrides(sessionID uuid.UUID) ([]models.ReviewOverride, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.ReviewSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create review session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByID(id uuid.UUID) (*models.ReviewSession, error) {
	var session models.ReviewSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find review session: %w", err)
	}
	return &session, nil
}

func (r *sessionRepository) Touch(id uuid.UUID) error {
	result := r.db.Model(&models.ReviewSession{}).
		Where("id = ?", id).
		Update("updated_at", time.Now())

	if result.Error != nil {
		return fmt.Errorf("failed to touch review session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("review session %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the session together with its overrides.
func (r *sessionRepository) Delete(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.ReviewOverride{}).Error; err != nil {
			return fmt.Errorf("failed to delete overrides: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.ReviewSession{}).Error; err != nil {
			return fmt.Errorf("failed to delete review session: %w", err)
		}
		return nil
	})
}

func (r *sessionRepository) UpsertOverride(override *models.ReviewOverride) error {
	override.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "applicant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "memo", "updated_at"}),
	}).Create(override).Error
	if err != nil {
		return fmt.Errorf("failed to save override: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindOverrides(sessionID uuid.UUID) ([]models.ReviewOverride, error) {
	var overrides []models.ReviewOverride
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("applicant_id ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overrides: %w", err)
	}
	return overrides, nil
}
