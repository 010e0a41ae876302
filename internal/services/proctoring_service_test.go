package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProctoringFixture(t *testing.T) (*mockRepository, *MockObjectStore, ProctoringService) {
	t.Helper()
	repo := newMockRepository()
	store := new(MockObjectStore)
	svc := NewProctoringService(repo, store, newTestLogger())
	return repo, store, svc
}

func validUpload() *ScreenshotUpload {
	return &ScreenshotUpload{
		TestSlug:    "backend0042",
		SessionID:   "sess-abc123",
		TakenAt:     time.Now(),
		ContentType: "image/png",
		Data:        bytes.Repeat([]byte{0x89}, 128),
	}
}

func TestSaveScreenshot_UploadsAndRecords(t *testing.T) {
	repo, store, svc := newProctoringFixture(t)
	ctx := context.Background()

	repo.test.On("GetBySlug", ctx, "backend0042").Return(&models.Test{
		ID: 42, Slug: "backend0042", EnableProctoring: true,
	}, nil)
	store.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
		return len(key) > len("sess-abc123/") && key[:12] == "sess-abc123/"
	}), mock.Anything, int64(128), "image/png").Return("https://minio.local/shots/key.png", nil)
	repo.screenshot.On("Create", ctx, mock.AnythingOfType("*models.ProctoringScreenshot")).Return(nil)

	shot, err := svc.SaveScreenshot(ctx, validUpload(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(42), shot.TestID)
	assert.Equal(t, uint(7), shot.CandidateID)
	assert.Equal(t, "sess-abc123", shot.SessionID)
	assert.Equal(t, int64(128), shot.SizeBytes)
	assert.Equal(t, "https://minio.local/shots/key.png", shot.URL)
	repo.assertExpectations(t)
	store.AssertExpectations(t)
}

func TestSaveScreenshot_RejectsOversizedCapture(t *testing.T) {
	_, store, svc := newProctoringFixture(t)

	upload := validUpload()
	upload.Data = make([]byte, MaxScreenshotBytes+1)

	_, err := svc.SaveScreenshot(context.Background(), upload, 7)
	assert.True(t, IsValidation(err))
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveScreenshot_RequiresSessionAndTimestamp(t *testing.T) {
	_, _, svc := newProctoringFixture(t)

	upload := validUpload()
	upload.SessionID = ""
	_, err := svc.SaveScreenshot(context.Background(), upload, 7)
	assert.True(t, IsValidation(err))

	upload = validUpload()
	upload.TakenAt = time.Time{}
	_, err = svc.SaveScreenshot(context.Background(), upload, 7)
	assert.True(t, IsValidation(err))
}

func TestSaveScreenshot_UnproctoredTestRejected(t *testing.T) {
	repo, store, svc := newProctoringFixture(t)
	ctx := context.Background()

	repo.test.On("GetBySlug", ctx, "backend0042").Return(&models.Test{
		ID: 42, Slug: "backend0042", EnableProctoring: false,
	}, nil)

	_, err := svc.SaveScreenshot(ctx, validUpload(), 7)
	assert.ErrorIs(t, err, ErrTestNotProctored)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListScreenshots_PassesSessionFilter(t *testing.T) {
	repo, _, svc := newProctoringFixture(t)
	ctx := context.Background()

	repo.screenshot.On("ListByTestAndCandidate", ctx, uint(42), uint(7), "sess-abc123").
		Return([]*models.ProctoringScreenshot{{ID: 1}, {ID: 2}}, nil)

	shots, err := svc.ListScreenshots(ctx, 42, 7, "sess-abc123")
	require.NoError(t, err)
	assert.Len(t, shots, 2)
}
