package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates the per-aggregate repositories. WithTx runs fn
// against a Repository bound to a single database transaction; any
// error rolls the whole unit of work back.
type Repository interface {
	User() UserRepository
	Test() TestRepository
	Attempt() AttemptRepository
	Screenshot() ScreenshotRepository

	WithTx(ctx context.Context, fn func(Repository) error) error
}

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err represents a unique
// constraint violation. Requires the gorm error translator to be
// enabled on the connection.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
