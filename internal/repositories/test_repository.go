package repositories

import (
	"context"
	"time"

	"github.com/dotwork/testadmin-service/internal/models"
)

// TestRepository covers test documents and their embedded invite list.
type TestRepository interface {
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetByIDWithDetails(ctx context.Context, id uint) (*models.Test, error)
	GetBySlug(ctx context.Context, slug string) (*models.Test, error)
	List(ctx context.Context, filters TestFilters) ([]*models.Test, int64, error)
	ListAssignedTo(ctx context.Context, candidateEmail string) ([]*models.Test, error)

	// Invite list operations.
	CreateInvites(ctx context.Context, invites []*models.CandidateInvite) error
	GetInvite(ctx context.Context, testID, candidateID uint) (*models.CandidateInvite, error)
	GetInviteByEmail(ctx context.Context, testID uint, email string) (*models.CandidateInvite, error)
	ListInvites(ctx context.Context, testID uint) ([]*models.CandidateInvite, error)
	UpdateDeadline(ctx context.Context, testID uint, deadline time.Time) error

	// ConsumeInvite atomically stamps usedAt on the invite iff it is
	// still unconsumed; reports whether this call won the stamp. This
	// is the one-time-use serialization point for redemption.
	ConsumeInvite(ctx context.Context, inviteID uint, at time.Time) (bool, error)

	// MarkInviteAttempted flips the has-attempted flag and status after
	// a successful submission.
	MarkInviteAttempted(ctx context.Context, testID uint, email string, at time.Time) error

	// UpdateInviteDelivery records the post-commit email outcome for
	// one recipient.
	UpdateInviteDelivery(ctx context.Context, inviteID uint, status models.EmailDeliveryStatus, lastError *string) error
}
