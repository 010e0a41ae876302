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
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockGradingService is a mock implementation of GradingService
type MockGradingService struct {
	mock.Mock
}

func (m *MockGradingService) Evaluate(ctx context.Context, attemptID uint, force bool) (*models.Evaluation, error) {
	args := m.Called(ctx, attemptID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Evaluation), args.Error(1)
}

func newAttemptFixture(t *testing.T) (*mockRepository, *MockGradingService, *events.MockPublisher, AttemptService) {
	t.Helper()
	repo := newMockRepository()
	grading := new(MockGradingService)
	publisher := events.NewMockPublisher()
	svc := NewAttemptService(repo, grading, publisher, newTestLogger(), validator.New())
	return repo, grading, publisher, svc
}

func questionedTest(deadline time.Time) *models.Test {
	return &models.Test{
		ID:             42,
		Name:           "Backend Screening",
		Slug:           "backend0042",
		AccessDeadline: deadline,
		MCQs: []models.MCQQuestion{
			{ID: 1, TestID: 42, Question: "Pick one", Options: datatypes.JSON(`["A","B","C"]`), Marks: 2},
		},
		TrueFalse: []models.TrueFalseQuestion{
			{ID: 2, TestID: 42, Question: "Yes or no", Marks: 1},
		},
		Descriptive: []models.DescriptiveQuestion{
			{ID: 3, TestID: 42, Question: "Explain", Marks: 5},
		},
	}
}

func candidateUser() *models.User {
	return &models.User{ID: 7, Email: "jane@example.com", Role: models.RoleCandidate, Active: true}
}

func TestSubmit_FreezesSnapshotAndGrades(t *testing.T) {
	repo, grading, publisher, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(time.Hour)), nil)
	repo.test.On("GetInviteByEmail", ctx, uint(42), "jane@example.com").Return(&models.CandidateInvite{ID: 100}, nil)
	repo.attempt.On("GetByTestAndCandidate", ctx, uint(42), uint(7)).Return(nil, gorm.ErrRecordNotFound)

	var stored *models.Attempt
	repo.attempt.On("Create", ctx, mock.AnythingOfType("*models.Attempt")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*models.Attempt)
		stored.ID = 500
	}).Return(nil)
	repo.test.On("MarkInviteAttempted", ctx, uint(42), "jane@example.com", mock.AnythingOfType("time.Time")).Return(nil)
	grading.On("Evaluate", ctx, uint(500), false).Return(&models.Evaluation{Percentage: 80}, nil)

	result, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test: TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{
			"1":   "B",
			"2":   "False", // string form is coerced
			"3":   "Because of indexes.",
			"999": "dropped silently",
		},
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(500), result.AttemptID)
	assert.Equal(t, models.AttemptEvaluated, result.Status)
	assert.Equal(t, 80, result.Evaluation.Percentage)

	require.NotNil(t, stored)
	var submission models.Submission
	require.NoError(t, json.Unmarshal(stored.Submission, &submission))
	assert.Equal(t, "backend0042", submission.Slug)
	require.Len(t, submission.Answers, 3)

	byID := make(map[string]models.AnswerSnapshot)
	for _, snap := range submission.Answers {
		byID[snap.QuestionID] = snap
	}
	assert.Equal(t, "B", byID["1"].Answer)
	assert.Equal(t, []string{"A", "B", "C"}, byID["1"].Options)
	assert.Equal(t, 2.0, byID["1"].Marks)
	assert.Equal(t, false, byID["2"].Answer)
	assert.Equal(t, "Because of indexes.", byID["3"].Answer)
	assert.NotContains(t, byID, "999")

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, events.EventAttemptSubmitted, publisher.Events[0].Type)
	repo.assertExpectations(t)
	grading.AssertExpectations(t)
}

func TestSubmit_EmptyAnswersRejected(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{},
	}, 7)
	assert.ErrorIs(t, err, ErrEmptySubmission)
}

func TestSubmit_OnlyUnknownQuestionsRejected(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(time.Hour)), nil)
	repo.test.On("GetInviteByEmail", ctx, uint(42), "jane@example.com").Return(&models.CandidateInvite{ID: 100}, nil)
	repo.attempt.On("GetByTestAndCandidate", ctx, uint(42), uint(7)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"404": "nothing here"},
	}, 7)
	assert.ErrorIs(t, err, ErrEmptySubmission)
	repo.attempt.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_SecondAttemptRejected(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(time.Hour)), nil)
	repo.test.On("GetInviteByEmail", ctx, uint(42), "jane@example.com").Return(&models.CandidateInvite{ID: 100}, nil)
	repo.attempt.On("GetByTestAndCandidate", ctx, uint(42), uint(7)).Return(&models.Attempt{ID: 1}, nil)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"1": "A"},
	}, 7)
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestSubmit_ConcurrentDuplicateCaughtByConstraint(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(time.Hour)), nil)
	repo.test.On("GetInviteByEmail", ctx, uint(42), "jane@example.com").Return(&models.CandidateInvite{ID: 100}, nil)
	repo.attempt.On("GetByTestAndCandidate", ctx, uint(42), uint(7)).Return(nil, gorm.ErrRecordNotFound)
	repo.attempt.On("Create", ctx, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"1": "A"},
	}, 7)
	assert.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestSubmit_UninvitedCandidateRejected(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(time.Hour)), nil)
	repo.test.On("GetInviteByEmail", ctx, uint(42), "jane@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"1": "A"},
	}, 7)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestSubmit_PastDeadlineIsGone(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(-time.Minute)), nil)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"1": "A"},
	}, 7)
	assert.ErrorIs(t, err, ErrDeadlineExpired)
}

func TestSubmit_NonCandidateForbidden(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(2)).Return(&models.User{ID: 2, Role: models.RoleHR}, nil)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"1": "A"},
	}, 2)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmit_GradingFailureKeepsAttempt(t *testing.T) {
	repo, grading, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.user.On("GetByID", ctx, uint(7)).Return(candidateUser(), nil)
	repo.test.On("GetBySlug", ctx, "backend0042").Return(questionedTest(time.Now().Add(time.Hour)), nil)
	repo.test.On("GetInviteByEmail", ctx, uint(42), "jane@example.com").Return(&models.CandidateInvite{ID: 100}, nil)
	repo.attempt.On("GetByTestAndCandidate", ctx, uint(42), uint(7)).Return(nil, gorm.ErrRecordNotFound)
	repo.attempt.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Attempt).ID = 500
	}).Return(nil)
	repo.test.On("MarkInviteAttempted", ctx, uint(42), "jane@example.com", mock.Anything).Return(nil)
	grading.On("Evaluate", ctx, uint(500), false).Return(nil, ErrEvaluationFailed)

	_, err := svc.Submit(ctx, &SubmitAttemptRequest{
		Test:    TestRef{Slug: "backend0042"},
		Answers: map[string]interface{}{"1": "A"},
	}, 7)
	assert.ErrorIs(t, err, ErrEvaluationFailed)
	repo.attempt.AssertCalled(t, "Create", ctx, mock.Anything)
}

func TestGetByID_CandidateCannotReadOthersAttempt(t *testing.T) {
	repo, _, _, svc := newAttemptFixture(t)
	ctx := context.Background()

	repo.attempt.On("GetByID", ctx, uint(500)).Return(&models.Attempt{ID: 500, CandidateID: 8}, nil)

	_, err := svc.GetByID(ctx, 500, 7, models.RoleCandidate)
	assert.ErrorIs(t, err, ErrAttemptAccessDenied)

	attempt, err := svc.GetByID(ctx, 500, 1, models.RoleHR)
	require.NoError(t, err)
	assert.Equal(t, uint(500), attempt.ID)
}
