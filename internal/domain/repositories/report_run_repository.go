package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/johnquangdev/cyberon-reporter/internal/domain/entities"
)

// ReportRunRepository persists the history of pipeline runs
type ReportRunRepository interface {
	Create(ctx context.Context, run *entities.ReportRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ReportRun, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.ReportRun, error)
}
