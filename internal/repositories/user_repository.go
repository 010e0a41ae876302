package repositories

import (
	"context"

	"github.com/dotwork/testadmin-service/internal/models"
)

// UserRepository covers account lookup and provisioning. Create must
// surface a duplicate-key error on email collision so callers can
// resolve provisioning races by re-fetching.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	ListPendingCandidates(ctx context.Context, filters PendingUserFilters) ([]*models.User, int64, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
}
