package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dotwork/testadmin-service/internal/cache"
	"github.com/dotwork/testadmin-service/internal/grader"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/storage"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

func newTestLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) ListPendingCandidates(ctx context.Context, filters repositories.PendingUserFilters) ([]*models.User, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

// MockTestRepository is a mock implementation of TestRepository
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetByIDWithDetails(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) GetBySlug(ctx context.Context, slug string) (*models.Test, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) ListAssignedTo(ctx context.Context, candidateEmail string) ([]*models.Test, error) {
	args := m.Called(ctx, candidateEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}

func (m *MockTestRepository) CreateInvites(ctx context.Context, invites []*models.CandidateInvite) error {
	args := m.Called(ctx, invites)
	return args.Error(0)
}

func (m *MockTestRepository) GetInvite(ctx context.Context, testID, candidateID uint) (*models.CandidateInvite, error) {
	args := m.Called(ctx, testID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CandidateInvite), args.Error(1)
}

func (m *MockTestRepository) GetInviteByEmail(ctx context.Context, testID uint, email string) (*models.CandidateInvite, error) {
	args := m.Called(ctx, testID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CandidateInvite), args.Error(1)
}

func (m *MockTestRepository) ListInvites(ctx context.Context, testID uint) ([]*models.CandidateInvite, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CandidateInvite), args.Error(1)
}

func (m *MockTestRepository) UpdateDeadline(ctx context.Context, testID uint, deadline time.Time) error {
	args := m.Called(ctx, testID, deadline)
	return args.Error(0)
}

func (m *MockTestRepository) ConsumeInvite(ctx context.Context, inviteID uint, at time.Time) (bool, error) {
	args := m.Called(ctx, inviteID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockTestRepository) MarkInviteAttempted(ctx context.Context, testID uint, email string, at time.Time) error {
	args := m.Called(ctx, testID, email, at)
	return args.Error(0)
}

func (m *MockTestRepository) UpdateInviteDelivery(ctx context.Context, inviteID uint, status models.EmailDeliveryStatus, lastError *string) error {
	args := m.Called(ctx, inviteID, status, lastError)
	return args.Error(0)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetByTestAndCandidate(ctx context.Context, testID, candidateID uint) (*models.Attempt, error) {
	args := m.Called(ctx, testID, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) SetEvaluation(ctx context.Context, id uint, evaluation datatypes.JSON, status models.AttemptStatus) error {
	args := m.Called(ctx, id, evaluation, status)
	return args.Error(0)
}

// MockScreenshotRepository is a mock implementation of ScreenshotRepository
type MockScreenshotRepository struct {
	mock.Mock
}

func (m *MockScreenshotRepository) Create(ctx context.Context, shot *models.ProctoringScreenshot) error {
	args := m.Called(ctx, shot)
	return args.Error(0)
}

func (m *MockScreenshotRepository) ListByTestAndCandidate(ctx context.Context, testID, candidateID uint, sessionID string) ([]*models.ProctoringScreenshot, error) {
	args := m.Called(ctx, testID, candidateID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProctoringScreenshot), args.Error(1)
}

// mockRepository aggregates the per-aggregate mocks. WithTx runs fn
// against the same mocks, which is enough for unit tests that only
// assert the calls made inside the transaction.
type mockRepository struct {
	user       *MockUserRepository
	test       *MockTestRepository
	attempt    *MockAttemptRepository
	screenshot *MockScreenshotRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		user:       new(MockUserRepository),
		test:       new(MockTestRepository),
		attempt:    new(MockAttemptRepository),
		screenshot: new(MockScreenshotRepository),
	}
}

func (r *mockRepository) User() repositories.UserRepository             { return r.user }
func (r *mockRepository) Test() repositories.TestRepository             { return r.test }
func (r *mockRepository) Attempt() repositories.AttemptRepository       { return r.attempt }
func (r *mockRepository) Screenshot() repositories.ScreenshotRepository { return r.screenshot }

func (r *mockRepository) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *mockRepository) assertExpectations(t mock.TestingT) {
	r.user.AssertExpectations(t)
	r.test.AssertExpectations(t)
	r.attempt.AssertExpectations(t)
	r.screenshot.AssertExpectations(t)
}

// MockMailer is a mock implementation of mailer.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendInvite(to, name, testName, inviteURL, deadline string) error {
	args := m.Called(to, name, testName, inviteURL, deadline)
	return args.Error(0)
}

func (m *MockMailer) SendOTP(to, name, code string) error {
	args := m.Called(to, name, code)
	return args.Error(0)
}

// MockEvaluator is a mock implementation of grader.Evaluator
type MockEvaluator struct {
	mock.Mock
}

func (m *MockEvaluator) Evaluate(ctx context.Context, payload *grader.Payload) (*grader.Result, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*grader.Result), args.Error(1)
}

// MockObjectStore is a mock implementation of storage.ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) GetURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// stubCache is a CacheService that always misses.
type stubCache struct{}

func (stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}

func (stubCache) Delete(ctx context.Context, key string) error      { return nil }
func (stubCache) DeletePattern(ctx context.Context, p string) error { return nil }

// recordingCache misses every read and remembers which keys were
// deleted.
type recordingCache struct {
	stubCache
	deleted []string
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return nil
}

var _ storage.ObjectStore = (*MockObjectStore)(nil)
