package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dotwork/testadmin-service/internal/cache"
	"github.com/dotwork/testadmin-service/internal/events"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/dotwork/testadmin-service/internal/validator"
)

const (
	slugLength   = 10
	testCacheTTL = 5 * time.Minute
)

type testService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.Publisher
	logger    utils.Logger
	validator *validator.Validator
	baseURL   string
}

func NewTestService(repo repositories.Repository, cacheSvc cache.CacheService, publisher events.Publisher, logger utils.Logger, v *validator.Validator, baseURL string) TestService {
	return &testService{
		repo:      repo,
		cache:     cacheSvc,
		publisher: publisher,
		logger:    logger,
		validator: v,
		baseURL:   baseURL,
	}
}

func (s *testService) Create(ctx context.Context, req *CreateTestRequest, creatorID uint) (*models.Test, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if !req.AccessDeadline.After(time.Now()) {
		return nil, ErrDeadlineNotFuture
	}
	if len(req.MCQs)+len(req.TrueFalse)+len(req.Descriptive) == 0 {
		return nil, ErrNoQuestions
	}

	slug, err := randomSlug(slugLength)
	if err != nil {
		return nil, err
	}

	test := &models.Test{
		Name:           req.TestName,
		Category:       req.Category,
		Duration:       req.Duration,
		Description:    req.Description,
		AccessDeadline: req.AccessDeadline,
		Slug:           slug,
		TestLink:       fmt.Sprintf("%s/tests/%s", s.baseURL, slug),
		CreatedBy:      creatorID,
	}

	test.EnableProctoring = true
	if req.EnableProctoring != nil {
		test.EnableProctoring = *req.EnableProctoring
	}
	test.ForceFullScreen = true
	if req.ForceFullScreen != nil {
		test.ForceFullScreen = *req.ForceFullScreen
	}
	test.ScreenshotFrequency = 30
	if req.ScreenshotFrequency > 0 {
		test.ScreenshotFrequency = req.ScreenshotFrequency
	}

	for i, q := range req.MCQs {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("failed to encode options: %w", err)
		}
		test.MCQs = append(test.MCQs, models.MCQQuestion{
			Question:  q.Question,
			Options:   options,
			Marks:     q.Marks,
			SortOrder: i,
		})
	}
	for i, q := range req.TrueFalse {
		test.TrueFalse = append(test.TrueFalse, models.TrueFalseQuestion{
			Question:  q.Question,
			Marks:     q.Marks,
			SortOrder: i,
		})
	}
	for i, q := range req.Descriptive {
		test.Descriptive = append(test.Descriptive, models.DescriptiveQuestion{
			Question:  q.Question,
			Marks:     q.Marks,
			SortOrder: i,
		})
	}

	if err := s.repo.Test().Create(ctx, test); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrTestDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.InfoContext(ctx, "Test created",
		"test_id", test.ID,
		"slug", test.Slug,
		"creator_id", creatorID)

	if err := s.publisher.Publish(ctx, events.EventTestCreated, events.TestCreatedEvent{
		TestID:    test.ID,
		TestName:  test.Name,
		Slug:      test.Slug,
		CreatedBy: creatorID,
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish test created event", "test_id", test.ID, "error", err)
	}

	return test, nil
}

func (s *testService) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	test, err := s.repo.Test().GetByIDWithDetails(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

func (s *testService) GetBySlug(ctx context.Context, slug string) (*models.Test, error) {
	cacheKey := "test:slug:" + slug

	var cached models.Test
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !cache.IsCacheMiss(err) {
		s.logger.WarnContext(ctx, "Cache lookup failed", "key", cacheKey, "error", err)
	}

	test, err := s.repo.Test().GetBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test by slug: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, test, testCacheTTL); err != nil {
		s.logger.WarnContext(ctx, "Cache set failed", "key", cacheKey, "error", err)
	}
	return test, nil
}

func (s *testService) List(ctx context.Context, filters TestFilters) (*TestListResponse, error) {
	tests, total, err := s.repo.Test().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	return &TestListResponse{Tests: tests, Total: total}, nil
}

func (s *testService) ListAssignedTo(ctx context.Context, candidateEmail string) ([]*models.Test, error) {
	tests, err := s.repo.Test().ListAssignedTo(ctx, normalizeEmail(candidateEmail))
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned tests: %w", err)
	}
	return tests, nil
}

func (s *testService) UpdateDeadline(ctx context.Context, testID uint, deadline string, actorID uint) (*models.Test, error) {
	parsed, err := time.Parse(time.RFC3339, deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid deadline format", ErrValidationFailed)
	}
	if !parsed.After(time.Now()) {
		return nil, ErrDeadlineNotFuture
	}

	test, err := s.repo.Test().GetByID(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	if err := s.repo.Test().UpdateDeadline(ctx, testID, parsed); err != nil {
		return nil, fmt.Errorf("failed to update deadline: %w", err)
	}
	test.AccessDeadline = parsed

	if err := s.cache.Delete(ctx, "test:slug:"+test.Slug); err != nil {
		s.logger.WarnContext(ctx, "Cache invalidation failed", "slug", test.Slug, "error", err)
	}

	s.logger.InfoContext(ctx, "Test deadline updated",
		"test_id", testID,
		"deadline", parsed,
		"actor_id", actorID)
	return test, nil
}
