package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/applicant-review/internal/models"
)

type ReportRepository interface {
	Create(report *models.ExportReport) error
	FindByID(id uuid.UUID) (*models.ExportReport, error)
	FindBySession(sessionID uuid.UUID) ([]models.ExportReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.ExportReport) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create export report: %w", err)
	}
	return nil
}

func (r *reportRepository) FindByID(id uuid.UUID) (*models.ExportReport, error) {
	var report models.ExportReport
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("export report %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find export report: %w", err)
	}
	return &report, nil
}

func (r *reportRepository) FindBySession(sessionID uuid.UUID) ([]models.ExportReport, error) {
	var reports []models.ExportReport
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find export reports: %w", err)
	}
	return reports, nil
}
