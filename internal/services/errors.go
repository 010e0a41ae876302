package services

import (
	"errors"
	"fmt"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Test specific errors
	ErrTestNotFound       = errors.New("test not found")
	ErrTestAccessDenied   = errors.New("access denied to test")
	ErrTestDuplicateSlug  = errors.New("test slug already exists")
	ErrDeadlineExpired    = errors.New("test access deadline has passed")
	ErrDeadlineNotFuture  = errors.New("access deadline must be in the future")
	ErrNoQuestions        = errors.New("test has no questions")
	ErrTestNotProctored   = errors.New("proctoring is not enabled for this test")

	// Invite specific errors
	ErrInviteNotFound      = errors.New("invite not found for this candidate and test")
	ErrInviteExpired       = errors.New("invite link has expired")
	ErrInviteAlreadyUsed   = errors.New("invite link has already been used")
	ErrInviteTokenInvalid  = errors.New("invite token is invalid")
	ErrInviteDecryption    = errors.New("invite token could not be decrypted")
	ErrInviteTokenMismatch = errors.New("invite token does not match the issued invite")
	ErrIdentityMismatch    = errors.New("invite was issued to a different candidate")
	ErrNoRecipients        = errors.New("no candidate emails provided")

	// Attempt specific errors
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptAccessDenied  = errors.New("access denied to attempt")
	ErrAlreadyAttempted     = errors.New("candidate has already attempted this test")
	ErrNotEnrolled          = errors.New("candidate is not enrolled in this test")
	ErrEmptySubmission      = errors.New("submission contains no recognizable answers")
	ErrEvaluationFailed     = errors.New("automated evaluation failed")
	ErrAlreadyEvaluated     = errors.New("attempt has already been evaluated")

	// User/auth errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is not active")
	ErrInvalidOTP         = errors.New("invalid or expired verification code")
	ErrInvalidRole        = errors.New("invalid user role")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", ve.Field, ve.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrInviteNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrTestAccessDenied) ||
		errors.Is(err, ErrAttemptAccessDenied) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrIdentityMismatch)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrEmptySubmission) ||
		errors.Is(err, ErrNoRecipients) ||
		errors.Is(err, ErrDeadlineNotFuture) {
		return true
	}
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrTestDuplicateSlug) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAlreadyAttempted) ||
		errors.Is(err, ErrAlreadyEvaluated)
}

// IsGone checks if error represents an invite or deadline that can
// never succeed again; handlers map these to 410.
func IsGone(err error) bool {
	return errors.Is(err, ErrDeadlineExpired) ||
		errors.Is(err, ErrInviteExpired) ||
		errors.Is(err, ErrInviteAlreadyUsed)
}
