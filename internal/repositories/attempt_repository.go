package repositories

import (
	"context"

	"github.com/dotwork/testadmin-service/internal/models"
	"gorm.io/datatypes"
)

// AttemptRepository covers the immutable attempt records. Create must
// surface a duplicate-key error on the (test, candidate) uniqueness
// constraint; that constraint, not the pre-check, guarantees at most
// one attempt per pair.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	GetByTestAndCandidate(ctx context.Context, testID, candidateID uint) (*models.Attempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, int64, error)

	// SetEvaluation stores a sanitized evaluation and flips the attempt
	// status in one update; re-running replaces the prior evaluation.
	SetEvaluation(ctx context.Context, id uint, evaluation datatypes.JSON, status models.AttemptStatus) error
}

// ScreenshotRepository covers proctoring capture metadata.
type ScreenshotRepository interface {
	Create(ctx context.Context, shot *models.ProctoringScreenshot) error
	ListByTestAndCandidate(ctx context.Context, testID, candidateID uint, sessionID string) ([]*models.ProctoringScreenshot, error)
}
