package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dotwork/testadmin-service/internal/events"
	"github.com/dotwork/testadmin-service/internal/grader"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/utils"
)

type gradingService struct {
	repo      repositories.Repository
	evaluator grader.Evaluator
	publisher events.Publisher
	logger    utils.Logger
}

func NewGradingService(repo repositories.Repository, evaluator grader.Evaluator, publisher events.Publisher, logger utils.Logger) GradingService {
	return &gradingService{
		repo:      repo,
		evaluator: evaluator,
		publisher: publisher,
		logger:    logger,
	}
}

// Evaluate grades a stored attempt. An already evaluated attempt
// returns its stored evaluation unless force is set, in which case it
// is regraded and the prior result replaced.
func (s *gradingService) Evaluate(ctx context.Context, attemptID uint, force bool) (*models.Evaluation, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.Status == models.AttemptEvaluated && !force {
		var stored models.Evaluation
		if err := json.Unmarshal(attempt.Evaluation, &stored); err != nil {
			return nil, fmt.Errorf("failed to decode stored evaluation: %w", err)
		}
		return &stored, nil
	}

	var submission models.Submission
	if err := json.Unmarshal(attempt.Submission, &submission); err != nil {
		return nil, fmt.Errorf("failed to decode submission: %w", err)
	}

	payload := buildEvaluationPayload(attempt, &submission)
	result, err := s.evaluator.Evaluate(ctx, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "Evaluation failed",
			"attempt_id", attemptID,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	evaluation := sanitizeEvaluation(result, submission.Answers)

	evalJSON, err := json.Marshal(evaluation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode evaluation: %w", err)
	}
	if err := s.repo.Attempt().SetEvaluation(ctx, attemptID, evalJSON, models.AttemptEvaluated); err != nil {
		return nil, fmt.Errorf("failed to store evaluation: %w", err)
	}

	s.logger.InfoContext(ctx, "Attempt evaluated",
		"attempt_id", attemptID,
		"total_awarded", evaluation.TotalAwarded,
		"percentage", evaluation.Percentage,
		"forced", force)

	if err := s.publisher.Publish(ctx, events.EventAttemptEvaluated, events.AttemptEvaluatedEvent{
		AttemptID:    attemptID,
		TestID:       attempt.TestID,
		CandidateID:  attempt.CandidateID,
		TotalAwarded: evaluation.TotalAwarded,
		Percentage:   evaluation.Percentage,
		EvaluatedAt:  time.Now(),
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish attempt evaluated event", "attempt_id", attemptID, "error", err)
	}

	return evaluation, nil
}

// buildEvaluationPayload projects the frozen submission into the
// compact request shape the model grades from.
func buildEvaluationPayload(attempt *models.Attempt, submission *models.Submission) *grader.Payload {
	payload := &grader.Payload{
		TestID:          submission.TestID,
		Slug:            submission.Slug,
		TestName:        submission.TestName,
		CandidateEmail:  attempt.CandidateEmail,
		DurationSeconds: attempt.DurationSeconds,
		Questions:       make([]grader.Question, 0, len(submission.Answers)),
		Answers:         make(map[string]interface{}, len(submission.Answers)),
	}
	for _, ans := range submission.Answers {
		q := grader.Question{
			ID:     ans.QuestionID,
			Type:   string(ans.Type),
			Prompt: ans.Prompt,
			Marks:  ans.Marks,
		}
		if ans.Type == models.QuestionMCQ {
			q.Options = ans.Options
		}
		payload.Questions = append(payload.Questions, q)
		payload.Answers[ans.QuestionID] = ans.Answer
	}
	return payload
}

// sanitizeEvaluation distrusts the model arithmetic: the snapshot list
// drives the walk, awarded marks are clamped into [0, max] with the
// snapshot marks as the authority, and the totals and percentage are
// recomputed from the clamped values. A question the model skipped
// scores zero instead of shrinking the denominator; a question the
// model invented is dropped.
func sanitizeEvaluation(result *grader.Result, snapshots []models.AnswerSnapshot) *models.Evaluation {
	graded := make(map[string]grader.QuestionResult, len(result.PerQuestion))
	for _, q := range result.PerQuestion {
		graded[q.QuestionID] = q
	}

	out := &models.Evaluation{
		PerQuestion:     make([]models.QuestionEvaluation, 0, len(snapshots)),
		OverallFeedback: result.OverallFeedback,
	}

	var totalAwarded, totalPossible float64
	for _, snap := range snapshots {
		max := snap.Marks
		if !isFinite(max) || max < 0 {
			max = 0
		}

		var awarded float64
		correctness := models.CorrectnessUnknown
		feedback := ""
		if q, ok := graded[snap.QuestionID]; ok {
			awarded = q.AwardedMarks
			if !isFinite(awarded) || awarded < 0 {
				awarded = 0
			}
			if awarded > max {
				awarded = max
			}

			correctness = models.Correctness(q.Correctness)
			switch correctness {
			case models.CorrectnessCorrect, models.CorrectnessPartial,
				models.CorrectnessIncorrect, models.CorrectnessUnknown:
			default:
				correctness = models.CorrectnessUnknown
			}
			feedback = q.Feedback
		}

		totalAwarded += awarded
		totalPossible += max
		out.PerQuestion = append(out.PerQuestion, models.QuestionEvaluation{
			QuestionID:      snap.QuestionID,
			Type:            snap.Type,
			Prompt:          snap.Prompt,
			CandidateAnswer: snap.Answer,
			MaxMarks:        max,
			AwardedMarks:    awarded,
			Correctness:     correctness,
			Feedback:        feedback,
		})
	}

	out.TotalAwarded = totalAwarded
	out.TotalPossible = totalPossible
	if totalPossible > 0 {
		out.Percentage = int(math.Round(totalAwarded / totalPossible * 100))
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
