package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dotwork/testadmin-service/internal/events"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestServiceFixture(t *testing.T) (*mockRepository, *events.MockPublisher, TestService) {
	t.Helper()
	repo := newMockRepository()
	publisher := events.NewMockPublisher()
	svc := NewTestService(repo, stubCache{}, publisher, newTestLogger(), validator.New(), "https://tests.example.com")
	return repo, publisher, svc
}

func validCreateRequest() *CreateTestRequest {
	return &CreateTestRequest{
		TestName:       "Backend Screening",
		Category:       "engineering",
		Duration:       60,
		Description:    "Covers APIs and data modelling.",
		AccessDeadline: time.Now().Add(72 * time.Hour),
		MCQs: []MCQInput{
			{Question: "Pick one", Options: []string{"A", "B"}, Marks: 2},
			{Question: "Pick another", Options: []string{"X", "Y"}, Marks: 2},
		},
		TrueFalse:   []QuestionInput{{Question: "Yes or no", Marks: 1}},
		Descriptive: []QuestionInput{{Question: "Explain", Marks: 5}},
	}
}

func TestCreateTest_AssemblesQuestionsAndLink(t *testing.T) {
	repo, publisher, svc := newTestServiceFixture(t)
	ctx := context.Background()

	var created *models.Test
	repo.test.On("Create", ctx, mock.AnythingOfType("*models.Test")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*models.Test)
		created.ID = 42
	}).Return(nil)

	test, err := svc.Create(ctx, validCreateRequest(), 1)
	require.NoError(t, err)
	assert.Len(t, test.Slug, 10)
	assert.Equal(t, "https://tests.example.com/tests/"+test.Slug, test.TestLink)
	assert.Equal(t, uint(1), test.CreatedBy)

	// Proctoring defaults apply when the request leaves them unset.
	assert.True(t, test.EnableProctoring)
	assert.True(t, test.ForceFullScreen)
	assert.Equal(t, 30, test.ScreenshotFrequency)

	require.Len(t, test.MCQs, 2)
	assert.Equal(t, 0, test.MCQs[0].SortOrder)
	assert.Equal(t, 1, test.MCQs[1].SortOrder)
	var options []string
	require.NoError(t, json.Unmarshal(test.MCQs[0].Options, &options))
	assert.Equal(t, []string{"A", "B"}, options)
	require.Len(t, test.TrueFalse, 1)
	require.Len(t, test.Descriptive, 1)

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventTestCreated, publisher.Events[0].Type)
}

func TestCreateTest_ProctoringCanBeDisabled(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	ctx := context.Background()

	repo.test.On("Create", ctx, mock.Anything).Return(nil)

	off := false
	req := validCreateRequest()
	req.EnableProctoring = &off
	req.ScreenshotFrequency = 60

	test, err := svc.Create(ctx, req, 1)
	require.NoError(t, err)
	assert.False(t, test.EnableProctoring)
	assert.Equal(t, 60, test.ScreenshotFrequency)
}

func TestCreateTest_DeadlineMustBeFuture(t *testing.T) {
	_, _, svc := newTestServiceFixture(t)

	req := validCreateRequest()
	req.AccessDeadline = time.Now().Add(-time.Hour)

	_, err := svc.Create(context.Background(), req, 1)
	assert.ErrorIs(t, err, ErrDeadlineNotFuture)
}

func TestCreateTest_NeedsAtLeastOneQuestion(t *testing.T) {
	_, _, svc := newTestServiceFixture(t)

	req := validCreateRequest()
	req.MCQs = nil
	req.TrueFalse = nil
	req.Descriptive = nil

	_, err := svc.Create(context.Background(), req, 1)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestCreateTest_SlugCollisionIsConflict(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	ctx := context.Background()

	repo.test.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(ctx, validCreateRequest(), 1)
	assert.ErrorIs(t, err, ErrTestDuplicateSlug)
}

func TestGetBySlug_FallsThroughToRepository(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	ctx := context.Background()

	repo.test.On("GetBySlug", ctx, "backend0042").Return(&models.Test{ID: 42, Slug: "backend0042"}, nil)

	test, err := svc.GetBySlug(ctx, "backend0042")
	require.NoError(t, err)
	assert.Equal(t, uint(42), test.ID)
}

func TestGetBySlug_UnknownSlugIsNotFound(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	ctx := context.Background()

	repo.test.On("GetBySlug", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestUpdateDeadline_ParsesAndPersists(t *testing.T) {
	repo, _, svc := newTestServiceFixture(t)
	ctx := context.Background()

	deadline := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	repo.test.On("GetByID", ctx, uint(42)).Return(&models.Test{ID: 42, Slug: "backend0042"}, nil)
	repo.test.On("UpdateDeadline", ctx, uint(42), mock.AnythingOfType("time.Time")).Return(nil)

	test, err := svc.UpdateDeadline(ctx, 42, deadline.Format(time.RFC3339), 1)
	require.NoError(t, err)
	assert.True(t, test.AccessDeadline.Equal(deadline))
}

func TestUpdateDeadline_RejectsGarbageAndPast(t *testing.T) {
	_, _, svc := newTestServiceFixture(t)
	ctx := context.Background()

	_, err := svc.UpdateDeadline(ctx, 42, "next tuesday", 1)
	assert.True(t, IsValidation(err))

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	_, err = svc.UpdateDeadline(ctx, 42, past, 1)
	assert.ErrorIs(t, err, ErrDeadlineNotFuture)
}
