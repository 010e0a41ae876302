package services

import (
	"context"

	"github.com/dotwork/testadmin-service/internal/models"
)

// TestService owns test authoring and lookup.
type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID uint) (*models.Test, error)
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	GetBySlug(ctx context.Context, slug string) (*models.Test, error)
	List(ctx context.Context, filters TestFilters) (*TestListResponse, error)
	ListAssignedTo(ctx context.Context, candidateEmail string) ([]*models.Test, error)
	UpdateDeadline(ctx context.Context, testID uint, deadline string, actorID uint) (*models.Test, error)
}

// InviteService issues single-use invite links and redeems them.
type InviteService interface {
	AddCandidates(ctx context.Context, testID uint, req *AddCandidatesRequest, actorID uint) (*AddCandidatesResult, error)
	Redeem(ctx context.Context, rawToken string) (*RedeemResult, error)
}

// AttemptService accepts submissions and exposes attempt history.
type AttemptService interface {
	Submit(ctx context.Context, req *SubmitAttemptRequest, candidateID uint) (*SubmitAttemptResult, error)
	GetByID(ctx context.Context, attemptID uint, actorID uint, actorRole models.UserRole) (*models.Attempt, error)
	List(ctx context.Context, filters AttemptFilters) (*AttemptListResponse, error)
}

// GradingService runs the automated evaluator over stored attempts.
type GradingService interface {
	Evaluate(ctx context.Context, attemptID uint, force bool) (*models.Evaluation, error)
}

// UserService covers authentication and account administration.
type UserService interface {
	Signup(ctx context.Context, req *SignupRequest) (*models.User, error)
	VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*LoginResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	CreateUser(ctx context.Context, req *CreateUserRequest, actorRole models.UserRole) (*models.User, error)
	PendingCandidates(ctx context.Context, filters PendingUserFilters) (*PendingUsersResponse, error)
	Approve(ctx context.Context, userID uint) (*models.User, error)
	Reject(ctx context.Context, userID uint) error
}

// ProctoringService stores and lists screenshots captured during an
// attempt.
type ProctoringService interface {
	SaveScreenshot(ctx context.Context, upload *ScreenshotUpload, candidateID uint) (*models.ProctoringScreenshot, error)
	ListScreenshots(ctx context.Context, testID, candidateID uint, sessionID string) ([]*models.ProctoringScreenshot, error)
}

// ExportService renders attempt results as spreadsheets.
type ExportService interface {
	ExportResults(ctx context.Context, testID uint) ([]byte, string, error)
}
