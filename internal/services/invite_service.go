package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dotwork/testadmin-service/internal/cache"
	"github.com/dotwork/testadmin-service/internal/events"
	"github.com/dotwork/testadmin-service/internal/mailer"
	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/repositories"
	"github.com/dotwork/testadmin-service/internal/token"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/dotwork/testadmin-service/internal/validator"
)

type inviteService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	codec     *token.Codec
	sessions  *token.SessionCodec
	mailer    mailer.Mailer
	publisher events.Publisher
	logger    utils.Logger
	validator *validator.Validator
	baseURL   string
}

func NewInviteService(
	repo repositories.Repository,
	cacheSvc cache.CacheService,
	codec *token.Codec,
	sessions *token.SessionCodec,
	m mailer.Mailer,
	publisher events.Publisher,
	logger utils.Logger,
	v *validator.Validator,
	baseURL string,
) InviteService {
	return &inviteService{
		repo:      repo,
		cache:     cacheSvc,
		codec:     codec,
		sessions:  sessions,
		mailer:    m,
		publisher: publisher,
		logger:    logger,
		validator: v,
		baseURL:   baseURL,
	}
}

// issuedInvite pairs a persisted invite with the material needed for
// the post-commit email dispatch. The raw token is never stored.
type issuedInvite struct {
	invite   *models.CandidateInvite
	userName string
	link     string
}

func (s *inviteService) AddCandidates(ctx context.Context, testID uint, req *AddCandidatesRequest, actorID uint) (*AddCandidatesResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	// Every issuance carries the deadline the test moves to; a stale
	// one is rejected before anything is provisioned.
	now := time.Now()
	deadline := req.AccessDeadline
	if !deadline.After(now) {
		return nil, ErrDeadlineNotFuture
	}

	test, err := s.repo.Test().GetByIDWithDetails(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	existing := make(map[string]bool, len(test.Candidates))
	for _, inv := range test.Candidates {
		existing[normalizeEmail(inv.Email)] = true
	}

	// Normalize and dedupe the request itself; re-inviting an enrolled
	// address is a skip, not an error.
	seen := make(map[string]bool, len(req.Emails))
	var fresh []string
	result := &AddCandidatesResult{TestID: testID, AccessDeadline: deadline}
	for _, raw := range req.Emails {
		email := normalizeEmail(raw)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		if existing[email] {
			result.Outcomes = append(result.Outcomes, InviteOutcome{Email: email, Skipped: true})
			result.Skipped++
			continue
		}
		fresh = append(fresh, email)
	}
	if len(seen) == 0 {
		return nil, ErrNoRecipients
	}

	var issued []issuedInvite
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		// The new deadline and the new invites land in one
		// transaction: an enrollment is never visible under the old
		// deadline.
		if err := tx.Test().UpdateDeadline(ctx, testID, deadline); err != nil {
			return err
		}

		var invites []*models.CandidateInvite
		for _, email := range fresh {
			user, err := s.findOrProvisionCandidate(ctx, tx, email)
			if err != nil {
				return err
			}

			compact, jti, err := s.codec.Issue(email, testID, user.ID, now)
			if err != nil {
				return err
			}

			// The signed TTL is clamped to the new deadline; the link
			// never outlives the test.
			expiresAt := now.Add(token.InviteTTL)
			if expiresAt.After(deadline) {
				expiresAt = deadline
			}

			invite := &models.CandidateInvite{
				TestID:      testID,
				Email:       email,
				CandidateID: user.ID,
				Status:      models.InviteStatusInvited,
				JTIHash:     token.HashJTI(jti),
				InvitedAt:   now,
				ExpiresAt:   &expiresAt,
				EmailStatus: models.EmailPending,
			}
			invites = append(invites, invite)
			issued = append(issued, issuedInvite{
				invite:   invite,
				userName: user.Name,
				link:     s.inviteLink(compact),
			})
		}
		if len(invites) == 0 {
			return nil
		}
		return tx.Test().CreateInvites(ctx, invites)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enroll candidates: %w", err)
	}

	// The cached test is stale now: new candidates, new deadline.
	cacheKey := "test:slug:" + test.Slug
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		s.logger.WarnContext(ctx, "Cache invalidation failed", "key", cacheKey, "error", err)
	}

	// Email dispatch happens after the batch is committed; a failed
	// send never rolls back an enrollment, it is recorded per invite.
	var invitedEmails []string
	for _, iss := range issued {
		outcome := InviteOutcome{Email: iss.invite.Email, Invited: true}
		sendErr := s.mailer.SendInvite(
			iss.invite.Email,
			iss.userName,
			test.Name,
			iss.link,
			deadline.Format("Jan 2, 2006 15:04 MST"),
		)
		if sendErr != nil {
			msg := sendErr.Error()
			outcome.EmailStatus = string(models.EmailFailed)
			outcome.Error = msg
			if err := s.repo.Test().UpdateInviteDelivery(ctx, iss.invite.ID, models.EmailFailed, &msg); err != nil {
				s.logger.ErrorContext(ctx, "Failed to record delivery failure", "invite_id", iss.invite.ID, "error", err)
			}
		} else {
			outcome.EmailStatus = string(models.EmailSent)
			if err := s.repo.Test().UpdateInviteDelivery(ctx, iss.invite.ID, models.EmailSent, nil); err != nil {
				s.logger.ErrorContext(ctx, "Failed to record delivery", "invite_id", iss.invite.ID, "error", err)
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
		result.Invited++
		invitedEmails = append(invitedEmails, iss.invite.Email)
	}

	s.logger.InfoContext(ctx, "Candidates enrolled",
		"test_id", testID,
		"invited", result.Invited,
		"skipped", result.Skipped,
		"actor_id", actorID)

	if len(invitedEmails) > 0 {
		if err := s.publisher.Publish(ctx, events.EventInvitesIssued, events.InvitesIssuedEvent{
			TestID:    testID,
			TestName:  test.Name,
			IssuedBy:  actorID,
			Emails:    invitedEmails,
			InvitedAt: now,
		}); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish invites issued event", "test_id", testID, "error", err)
		}
	}

	return result, nil
}

// findOrProvisionCandidate returns the account for an email, creating
// an inactive candidate account when none exists. A concurrent create
// of the same address is resolved by re-fetching.
func (s *inviteService) findOrProvisionCandidate(ctx context.Context, tx repositories.Repository, email string) (*models.User, error) {
	user, err := tx.User().GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up candidate: %w", err)
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Name:   deriveNameFromEmail(email),
		Email:  email,
		Role:   models.RoleCandidate,
		Active: false,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := tx.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return tx.User().GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to provision candidate: %w", err)
	}
	return user, nil
}

func (s *inviteService) inviteLink(compact string) string {
	return fmt.Sprintf("%s/invite?token=%s", s.baseURL, url.QueryEscape(compact))
}

func (s *inviteService) Redeem(ctx context.Context, rawToken string) (*RedeemResult, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: missing token", ErrValidationFailed)
	}

	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpiredToken):
			return nil, ErrInviteExpired
		case token.IsDecryptionError(err):
			return nil, ErrInviteDecryption
		default:
			return nil, ErrInviteTokenInvalid
		}
	}

	test, err := s.repo.Test().GetByID(ctx, claims.TestID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	invite, err := s.repo.Test().GetInvite(ctx, claims.TestID, claims.CandidateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	if normalizeEmail(invite.Email) != normalizeEmail(claims.Subject) {
		return nil, ErrIdentityMismatch
	}

	now := time.Now()
	if test.AccessDeadline.Before(now) {
		return nil, ErrDeadlineExpired
	}
	if invite.JTIHash == "" {
		return nil, ErrInviteNotFound
	}
	if invite.UsedAt != nil {
		return nil, ErrInviteAlreadyUsed
	}
	if invite.EffectiveExpiry(test.AccessDeadline, token.InviteTTL).Before(now) {
		return nil, ErrInviteExpired
	}
	if !token.JTIMatches(claims.ID, invite.JTIHash) {
		return nil, ErrInviteTokenMismatch
	}

	var candidate *models.User
	err = s.repo.WithTx(ctx, func(tx repositories.Repository) error {
		// The conditional stamp is what makes redemption exactly-once
		// under concurrent requests; the checks above only shape the
		// error the loser sees.
		won, err := tx.Test().ConsumeInvite(ctx, invite.ID, now)
		if err != nil {
			return fmt.Errorf("failed to consume invite: %w", err)
		}
		if !won {
			return ErrInviteAlreadyUsed
		}

		candidate, err = tx.User().GetByID(ctx, claims.CandidateID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get candidate: %w", err)
		}

		candidate.Active = true
		candidate.EmailVerified = true
		candidate.LastLoginAt = timePtr(now)
		return tx.User().Save(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	sessionToken, err := s.sessions.Issue(candidate.ID, candidate.Email, string(candidate.Role), token.CandidateSessionTTL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.InfoContext(ctx, "Invite redeemed",
		"test_id", test.ID,
		"candidate_id", candidate.ID)

	if err := s.publisher.Publish(ctx, events.EventInviteRedeemed, events.InviteRedeemedEvent{
		TestID:      test.ID,
		CandidateID: candidate.ID,
		Email:       candidate.Email,
		RedeemedAt:  now,
	}); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish invite redeemed event", "test_id", test.ID, "error", err)
	}

	return &RedeemResult{
		Candidate:    candidate,
		SessionToken: sessionToken,
		RedirectPath: fmt.Sprintf("/tests/%s/lobby", test.Slug),
		TestSlug:     test.Slug,
	}, nil
}
