package services

import (
	"time"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
)

// ===== TEST DTOs =====

type MCQInput struct {
	Question string   `json:"question" validate:"required"`
	Options  []string `json:"options" validate:"required,min=2,dive,required"`
	Marks    float64  `json:"marks" validate:"required,gt=0"`
}

type QuestionInput struct {
	Question string  `json:"question" validate:"required"`
	Marks    float64 `json:"marks" validate:"required,gt=0"`
}

type CreateTestRequest struct {
	TestName            string          `json:"test_name" validate:"required,min=1,max=200"`
	Category            string          `json:"category" validate:"required"`
	Duration            int             `json:"duration" validate:"required,min=1,max=600"`
	Description         string          `json:"description" validate:"required,max=2000"`
	AccessDeadline      time.Time       `json:"access_deadline" validate:"required"`
	EnableProctoring    *bool           `json:"enable_proctoring"`
	ScreenshotFrequency int             `json:"screenshot_frequency" validate:"omitempty,min=5,max=600"`
	ForceFullScreen     *bool           `json:"force_full_screen"`
	MCQs                []MCQInput      `json:"mcqs" validate:"dive"`
	TrueFalse           []QuestionInput `json:"true_false" validate:"dive"`
	Descriptive         []QuestionInput `json:"descriptive" validate:"dive"`
}

type TestListResponse struct {
	Tests []*models.Test `json:"tests"`
	Total int64          `json:"total"`
}

// ===== INVITE DTOs =====

// AddCandidatesRequest enrolls a batch of emails and carries the new
// access deadline the whole test moves to; the two persist together.
type AddCandidatesRequest struct {
	Emails         []string  `json:"emails" validate:"required,min=1,dive,required,email"`
	AccessDeadline time.Time `json:"access_deadline" validate:"required"`
}

// InviteOutcome describes what happened to one requested email.
type InviteOutcome struct {
	Email       string `json:"email"`
	Invited     bool   `json:"invited"`
	Skipped     bool   `json:"skipped"`
	EmailStatus string `json:"email_status,omitempty"`
	Error       string `json:"error,omitempty"`
}

type AddCandidatesResult struct {
	TestID         uint            `json:"test_id"`
	AccessDeadline time.Time       `json:"access_deadline"`
	Invited        int             `json:"invited"`
	Skipped        int             `json:"skipped"`
	Outcomes       []InviteOutcome `json:"outcomes"`
}

// RedeemResult is what a successful invite redemption yields: an
// activated candidate, a session token, and the lobby to land on.
type RedeemResult struct {
	Candidate    *models.User `json:"candidate"`
	SessionToken string       `json:"-"`
	RedirectPath string       `json:"redirect_path"`
	TestSlug     string       `json:"test_slug"`
}

// ===== ATTEMPT DTOs =====

// TestRef addresses a test by slug or by numeric id; slug wins when
// both are present.
type TestRef struct {
	Slug string `json:"slug"`
	ID   uint   `json:"_id"`
}

type SubmitAttemptRequest struct {
	Test            TestRef                `json:"test" validate:"required"`
	Answers         map[string]interface{} `json:"answers" validate:"required"`
	DurationSeconds *int                   `json:"durationSeconds" validate:"omitempty,min=0"`
	Metadata        map[string]interface{} `json:"metadata"`
}

type SubmitAttemptResult struct {
	AttemptID  uint                 `json:"attempt_id"`
	Status     models.AttemptStatus `json:"status"`
	Evaluation *models.Evaluation   `json:"evaluation,omitempty"`
}

type AttemptListResponse struct {
	Attempts []*models.Attempt `json:"attempts"`
	Total    int64             `json:"total"`
}

// ===== USER / AUTH DTOs =====

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"otp" validate:"required,len=6,numeric"`
}

type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,min=2,max=100"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8"`
	Role     models.UserRole `json:"role" validate:"required,user_role"`
}

type PendingUsersResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

// ===== PROCTORING DTOs =====

type ScreenshotUpload struct {
	TestSlug    string
	TestID      uint
	SessionID   string
	TakenAt     time.Time
	ContentType string
	Size        int64
	Data        []byte
}

// re-exported so handlers do not import repositories directly for
// filter construction
type TestFilters = repositories.TestFilters
type AttemptFilters = repositories.AttemptFilters
type PendingUserFilters = repositories.PendingUserFilters
