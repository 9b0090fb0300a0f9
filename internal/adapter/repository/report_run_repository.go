package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
	"github.com/johnquangdev/cyberon-reporter/internal/domain/repositories"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ReportRunRepository handles report run history
type ReportRunRepository struct {
	db *gorm.DB
}

var _ repositories.ReportRunRepository = (*ReportRunRepository)(nil)

// NewReportRunRepository creates a new report run repository
func NewReportRunRepository(db *gorm.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

// Create stores a run
func (r *ReportRunRepository) Create(ctx context.Context, run *entities.ReportRun) error {
	if run == nil {
		return errors.New("report run cannot be nil")
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID retrieves a run by ID, or nil when it does not exist
func (r *ReportRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ReportRun, error) {
	var run entities.ReportRun
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListByUser returns the most recent runs of a user, newest first
func (r *ReportRunRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.ReportRun, error) {
	var runs []*entities.ReportRun
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(ClampLimit(limit)).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// ClampLimit bounds a requested page size
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
