package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/storage"
	"github.com/dotwork/testadmin-service/internal/utils"
)

// MaxScreenshotBytes bounds a single proctoring capture upload.
const MaxScreenshotBytes = 2 << 20

type proctoringService struct {
	repo   repositories.Repository
	store  storage.ObjectStore
	logger utils.Logger
}

func NewProctoringService(repo repositories.Repository, store storage.ObjectStore, logger utils.Logger) ProctoringService {
	return &proctoringService{repo: repo, store: store, logger: logger}
}

func (s *proctoringService) SaveScreenshot(ctx context.Context, upload *ScreenshotUpload, candidateID uint) (*models.ProctoringScreenshot, error) {
	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: screenshot file is missing", ErrValidationFailed)
	}
	if len(upload.Data) > MaxScreenshotBytes {
		return nil, fmt.Errorf("%w: screenshot exceeds %d bytes", ErrValidationFailed, MaxScreenshotBytes)
	}
	if upload.SessionID == "" || upload.TakenAt.IsZero() {
		return nil, fmt.Errorf("%w: sessionId and takenAt are required", ErrValidationFailed)
	}
	if upload.TestSlug == "" && upload.TestID == 0 {
		return nil, fmt.Errorf("%w: provide either testSlug or testId", ErrValidationFailed)
	}

	var (
		test *models.Test
		err  error
	)
	if upload.TestID != 0 {
		test, err = s.repo.Test().GetByID(ctx, upload.TestID)
	} else {
		test, err = s.repo.Test().GetBySlug(ctx, upload.TestSlug)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to resolve test: %w", err)
	}
	if !test.EnableProctoring {
		return nil, ErrTestNotProctored
	}

	objectKey := fmt.Sprintf("%s/%d%s", upload.SessionID, time.Now().UnixMilli(), extensionFor(upload.ContentType))
	url, err := s.store.Upload(ctx, objectKey, bytes.NewReader(upload.Data), int64(len(upload.Data)), upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store screenshot: %w", err)
	}

	shot := &models.ProctoringScreenshot{
		TestID:      test.ID,
		CandidateID: candidateID,
		SessionID:   upload.SessionID,
		TestSlug:    test.Slug,
		ObjectKey:   objectKey,
		URL:         url,
		SizeBytes:   int64(len(upload.Data)),
		ContentType: upload.ContentType,
		TakenAt:     upload.TakenAt,
	}
	if err := s.repo.Screenshot().Create(ctx, shot); err != nil {
		return nil, fmt.Errorf("failed to record screenshot: %w", err)
	}

	s.logger.InfoContext(ctx, "Screenshot stored",
		"test_id", test.ID,
		"candidate_id", candidateID,
		"session_id", upload.SessionID,
		"bytes", shot.SizeBytes)
	return shot, nil
}

func (s *proctoringService) ListScreenshots(ctx context.Context, testID, candidateID uint, sessionID string) ([]*models.ProctoringScreenshot, error) {
	shots, err := s.repo.Screenshot().ListByTestAndCandidate(ctx, testID, candidateID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list screenshots: %w", err)
	}
	return shots, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
