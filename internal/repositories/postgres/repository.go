package postgres

import (
	"context"

	"github.com/dotwork/testadmin-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB

	user       repositories.UserRepository
	test       repositories.TestRepository
	attempt    repositories.AttemptRepository
	screenshot repositories.ScreenshotRepository
}

// NewRepository builds the postgres-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		user:       NewUserPostgreSQL(db),
		test:       NewTestPostgreSQL(db),
		attempt:    NewAttemptPostgreSQL(db),
		screenshot: NewScreenshotPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository             { return r.user }
func (r *repository) Test() repositories.TestRepository             { return r.test }
func (r *repository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *repository) Screenshot() repositories.ScreenshotRepository { return r.screenshot }

func (r *repository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
