package postgres

import (
	"context"
	"time"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"gorm.io/gorm"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	return t.db.WithContext(ctx).Create(test).Error
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).
		Preload("MCQs", orderBySort).
		Preload("TrueFalse", orderBySort).
		Preload("Descriptive", orderBySort).
		Preload("Candidates").
		First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetBySlug(ctx context.Context, slug string) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).
		Preload("MCQs", orderBySort).
		Preload("TrueFalse", orderBySort).
		Preload("Descriptive", orderBySort).
		Preload("Candidates").
		Where("slug = ?", slug).
		First(&test).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

func orderBySort(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (t *TestPostgreSQL) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	var tests []*models.Test
	var total int64

	query := t.db.WithContext(ctx).Model(&models.Test{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder,
		map[string]bool{"created_at": true, "test_name": true, "access_deadline": true})

	if err := query.Preload("Candidates").Find(&tests).Error; err != nil {
		return nil, 0, err
	}
	return tests, total, nil
}

func (t *TestPostgreSQL) ListAssignedTo(ctx context.Context, candidateEmail string) ([]*models.Test, error) {
	var tests []*models.Test
	if err := t.db.WithContext(ctx).
		Joins("JOIN candidate_invites ON candidate_invites.test_id = tests.id").
		Where("candidate_invites.email = ?", candidateEmail).
		Preload("Candidates").
		Find(&tests).Error; err != nil {
		return nil, err
	}
	return tests, nil
}

// ===== INVITE LIST OPERATIONS =====

func (t *TestPostgreSQL) CreateInvites(ctx context.Context, invites []*models.CandidateInvite) error {
	if len(invites) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Create(invites).Error
}

func (t *TestPostgreSQL) GetInvite(ctx context.Context, testID, candidateID uint) (*models.CandidateInvite, error) {
	var invite models.CandidateInvite
	if err := t.db.WithContext(ctx).
		Where("test_id = ? AND candidate_id = ?", testID, candidateID).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (t *TestPostgreSQL) GetInviteByEmail(ctx context.Context, testID uint, email string) (*models.CandidateInvite, error) {
	var invite models.CandidateInvite
	if err := t.db.WithContext(ctx).
		Where("test_id = ? AND LOWER(email) = LOWER(?)", testID, email).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

func (t *TestPostgreSQL) ListInvites(ctx context.Context, testID uint) ([]*models.CandidateInvite, error) {
	var invites []*models.CandidateInvite
	if err := t.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("invited_at ASC").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

func (t *TestPostgreSQL) UpdateDeadline(ctx context.Context, testID uint, deadline time.Time) error {
	return t.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", testID).
		Update("access_deadline", deadline).Error
}

// ConsumeInvite wins the one-time-use race with a single conditional
// update: only the caller that observes used_at IS NULL at commit time
// gets RowsAffected == 1.
func (t *TestPostgreSQL) ConsumeInvite(ctx context.Context, inviteID uint, at time.Time) (bool, error) {
	result := t.db.WithContext(ctx).
		Model(&models.CandidateInvite{}).
		Where("id = ? AND used_at IS NULL", inviteID).
		Updates(map[string]interface{}{
			"used_at": at,
			"status":  models.InviteStatusReady,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (t *TestPostgreSQL) MarkInviteAttempted(ctx context.Context, testID uint, email string, at time.Time) error {
	return t.db.WithContext(ctx).
		Model(&models.CandidateInvite{}).
		Where("test_id = ? AND LOWER(email) = LOWER(?)", testID, email).
		Updates(map[string]interface{}{
			"has_attempted": true,
			"status":        models.InviteStatusSubmitted,
			"submitted_at":  at,
		}).Error
}

func (t *TestPostgreSQL) UpdateInviteDelivery(ctx context.Context, inviteID uint, status models.EmailDeliveryStatus, lastError *string) error {
	return t.db.WithContext(ctx).
		Model(&models.CandidateInvite{}).
		Where("id = ?", inviteID).
		Updates(map[string]interface{}{
			"email_status": status,
			"last_error":   lastError,
		}).Error
}

func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
