package postgres

import (
	"context"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Preload("Candidate").
		Preload("Test").
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByTestAndCandidate(ctx context.Context, testID, candidateID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("test_id = ? AND candidate_id = ?", testID, candidateID).
		First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	var attempts []*models.Attempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.Attempt{})
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}
	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder,
		map[string]bool{"created_at": true, "submitted_at": true, "status": true})

	if err := query.Preload("Candidate").Preload("Test").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

func (a *AttemptPostgreSQL) SetEvaluation(ctx context.Context, id uint, evaluation datatypes.JSON, status models.AttemptStatus) error {
	return a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"evaluation": evaluation,
			"status":     status,
		}).Error
}

type ScreenshotPostgreSQL struct {
	db *gorm.DB
}

func NewScreenshotPostgreSQL(db *gorm.DB) repositories.ScreenshotRepository {
	return &ScreenshotPostgreSQL{db: db}
}

func (s *ScreenshotPostgreSQL) Create(ctx context.Context, shot *models.ProctoringScreenshot) error {
	return s.db.WithContext(ctx).Create(shot).Error
}

func (s *ScreenshotPostgreSQL) ListByTestAndCandidate(ctx context.Context, testID, candidateID uint, sessionID string) ([]*models.ProctoringScreenshot, error) {
	query := s.db.WithContext(ctx).
		Where("test_id = ? AND candidate_id = ?", testID, candidateID)
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var shots []*models.ProctoringScreenshot
	if err := query.Order("taken_at ASC").Find(&shots).Error; err != nil {
		return nil, err
	}
	return shots, nil
}
