package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dotwork/testadmin-service/internal/events"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/dotwork/testadmin-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	grading   GradingService
	publisher events.Publisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewAttemptService(repo repositories.Repository, grading GradingService, publisher events.Publisher, logger utils.Logger, v *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		grading:   grading,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// questionMeta is the authoritative description of one question at
// submission time.
type questionMeta struct {
	qType   models.QuestionType
	prompt  string
	marks   float64
	options []string
}

func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest, candidateID uint) (*SubmitAttemptResult, error) {
	candidate, err := s.repo.User().GetByID(ctx, candidateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	if candidate.Role != models.RoleCandidate {
		return nil, ErrForbidden
	}

	if len(req.Answers) == 0 {
		return nil, ErrEmptySubmission
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	test, err := s.resolveTest(ctx, req.Test)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if test.AccessDeadline.Before(now) {
		return nil, ErrDeadlineExpired
	}

	email := normalizeEmail(candidate.Email)
	if _, err := s.repo.Test().GetInviteByEmail(ctx, test.ID, email); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	// Pre-check for a friendly error; the unique constraint on
	// (test, candidate) is the real guarantee.
	if _, err := s.repo.Attempt().GetByTestAndCandidate(ctx, test.ID, candidateID); err == nil {
		return nil, ErrAlreadyAttempted
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing attempt: %w", err)
	}

	index, err := buildQuestionIndex(test)
	if err != nil {
		return nil, err
	}
	snapshots := normalizeAnswers(req.Answers, index)
	if len(snapshots) == 0 {
		return nil, ErrEmptySubmission
	}

	submission := models.Submission{
		TestID:   strconv.FormatUint(uint64(test.ID), 10),
		Slug:     test.Slug,
		TestName: test.Name,
		Metadata: req.Metadata,
		Answers:  snapshots,
		Raw:      req,
	}
	submissionJSON, err := json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}

	attempt := &models.Attempt{
		TestID:          test.ID,
		CandidateID:     candidateID,
		CandidateEmail:  email,
		Submission:      submissionJSON,
		Status:          models.AttemptReceived,
		DurationSeconds: req.DurationSeconds,
		SubmittedAt:     now,
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("failed to store attempt: %w", err)
	}

	if err := s.repo.Test().MarkInviteAttempted(ctx, test.ID, email, now); err != nil {
		s.logger.ErrorContext(ctx, "Failed to mark invite attempted",
			"test_id", test.ID,
			"email", email,
			"error", err)
	}

	s.logger.InfoContext(ctx, "Attempt received",
		"attempt_id", attempt.ID,
		"test_id", test.ID,
		"candidate_id", candidateID)

	if err := s.publisher.Publish(ctx, events.EventAttemptSubmitted, events.AttemptSubmittedEvent{
		AttemptID:   attempt.ID,
		TestID:      test.ID,
		TestName:    test.Name,
		CandidateID: candidateID,
		SubmittedAt: now,
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish attempt submitted event", "attempt_id", attempt.ID, "error", err)
	}

	// Grade synchronously. A grading failure keeps the stored attempt;
	// it can be re-evaluated later.
	evaluation, err := s.grading.Evaluate(ctx, attempt.ID, false)
	if err != nil {
		return nil, err
	}

	return &SubmitAttemptResult{
		AttemptID:  attempt.ID,
		Status:     models.AttemptEvaluated,
		Evaluation: evaluation,
	}, nil
}

func (s *attemptService) resolveTest(ctx context.Context, ref TestRef) (*models.Test, error) {
	var (
		test *models.Test
		err  error
	)
	switch {
	case ref.Slug != "":
		test, err = s.repo.Test().GetBySlug(ctx, ref.Slug)
	case ref.ID != 0:
		test, err = s.repo.Test().GetByIDWithDetails(ctx, ref.ID)
	default:
		return nil, fmt.Errorf("%w: test reference is required", ErrValidationFailed)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to resolve test: %w", err)
	}
	return test, nil
}

func buildQuestionIndex(test *models.Test) (map[string]questionMeta, error) {
	index := make(map[string]questionMeta)
	for _, q := range test.MCQs {
		var options []string
		if len(q.Options) > 0 {
			if err := json.Unmarshal(q.Options, &options); err != nil {
				return nil, fmt.Errorf("failed to decode options for question %d: %w", q.ID, err)
			}
		}
		index[strconv.FormatUint(uint64(q.ID), 10)] = questionMeta{
			qType:   models.QuestionMCQ,
			prompt:  q.Question,
			marks:   q.Marks,
			options: options,
		}
	}
	for _, q := range test.TrueFalse {
		index[strconv.FormatUint(uint64(q.ID), 10)] = questionMeta{
			qType:  models.QuestionTrueFalse,
			prompt: q.Question,
			marks:  q.Marks,
		}
	}
	for _, q := range test.Descriptive {
		index[strconv.FormatUint(uint64(q.ID), 10)] = questionMeta{
			qType:  models.QuestionDescriptive,
			prompt: q.Question,
			marks:  q.Marks,
		}
	}
	return index, nil
}

// normalizeAnswers freezes the answered subset of the test. Answers to
// unknown question ids are dropped silently; true/false answers given
// as strings are coerced to booleans.
func normalizeAnswers(answers map[string]interface{}, index map[string]questionMeta) []models.AnswerSnapshot {
	var out []models.AnswerSnapshot
	for qid, raw := range answers {
		meta, ok := index[qid]
		if !ok {
			continue
		}
		answer := raw
		if meta.qType == models.QuestionTrueFalse {
			answer = coerceBool(raw)
		}
		snap := models.AnswerSnapshot{
			QuestionID: qid,
			Type:       meta.qType,
			Prompt:     meta.prompt,
			Marks:      meta.marks,
			Answer:     answer,
		}
		if meta.qType == models.QuestionMCQ {
			snap.Options = meta.options
		}
		out = append(out, snap)
	}
	return out
}

// coerceBool maps the strings "true" and "false" (any casing) to
// booleans and leaves every other value untouched.
func coerceBool(val interface{}) interface{} {
	switch v := val.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return val
}

func (s *attemptService) GetByID(ctx context.Context, attemptID uint, actorID uint, actorRole models.UserRole) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if actorRole == models.RoleCandidate && attempt.CandidateID != actorID {
		return nil, ErrAttemptAccessDenied
	}
	return attempt, nil
}

func (s *attemptService) List(ctx context.Context, filters AttemptFilters) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}
