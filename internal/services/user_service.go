package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dotwork/testadmin-service/internal/mailer"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/token"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/dotwork/testadmin-service/internal/validator"
)

const otpTTL = 10 * time.Minute

type userService struct {
	repo      repositories.Repository
	sessions  *token.SessionCodec
	mailer    mailer.Mailer
	logger    utils.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, sessions *token.SessionCodec, m mailer.Mailer, logger utils.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		sessions:  sessions,
		mailer:    m,
		logger:    logger,
		validator: v,
	}
}

// Signup registers a self-service candidate account. The account
// stays inactive until the email is verified and an admin approves it.
func (s *userService) Signup(ctx context.Context, req *SignupRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repo.User().GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:      req.Name,
		Email:     email,
		Role:      models.RoleCandidate,
		Active:    false,
		OTP:       &code,
		OTPExpiry: timePtr(time.Now().Add(otpTTL)),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.mailer.SendOTP(email, user.Name, code); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send verification code", "email", email, "error", err)
	}

	s.logger.InfoContext(ctx, "User signed up", "user_id", user.ID, "email", email)
	return user, nil
}

func (s *userService) VerifyOTP(ctx context.Context, req *VerifyOTPRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	user, err := s.repo.User().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.EmailVerified {
		return nil, fmt.Errorf("%w: email already verified", ErrConflict)
	}
	if user.OTP == nil || *user.OTP != req.Code ||
		user.OTPExpiry == nil || user.OTPExpiry.Before(time.Now()) {
		return nil, ErrInvalidOTP
	}

	user.EmailVerified = true
	user.OTP = nil
	user.OTPExpiry = nil
	if err := s.repo.User().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.InfoContext(ctx, "Email verified", "user_id", user.ID)
	return &LoginResponse{User: user}, nil
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	user, err := s.repo.User().GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repo.User().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	sessionToken, err := s.sessions.Issue(user.ID, user.Email, string(user.Role), token.LoginSessionTTL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "role", user.Role)
	return &LoginResponse{Token: sessionToken, User: user}, nil
}

// CreateUser provisions an HR or candidate account directly; only
// admins may create HR accounts.
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actorRole models.UserRole) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	assignable := false
	for _, role := range models.AssignableRoles {
		if req.Role == role {
			assignable = true
			break
		}
	}
	if !assignable {
		return nil, ErrInvalidRole
	}
	if req.Role == models.RoleHR && actorRole != models.RoleAdmin {
		return nil, ErrForbidden
	}

	email := normalizeEmail(req.Email)
	user := &models.User{
		Name:          req.Name,
		Email:         email,
		Role:          req.Role,
		Active:        true,
		EmailVerified: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) PendingCandidates(ctx context.Context, filters PendingUserFilters) (*PendingUsersResponse, error) {
	users, total, err := s.repo.User().ListPendingCandidates(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending candidates: %w", err)
	}
	return &PendingUsersResponse{Users: users, Total: total}, nil
}

func (s *userService) Approve(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Active {
		return nil, fmt.Errorf("%w: user is already active", ErrConflict)
	}
	if !user.EmailVerified {
		return nil, fmt.Errorf("%w: email is not verified", ErrValidationFailed)
	}

	user.Active = true
	if err := s.repo.User().Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.InfoContext(ctx, "User approved", "user_id", userID)
	return user, nil
}

func (s *userService) Reject(ctx context.Context, userID uint) error {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Active {
		return fmt.Errorf("%w: cannot reject an active user", ErrConflict)
	}

	if err := s.repo.User().Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "User rejected", "user_id", userID)
	return nil
}
