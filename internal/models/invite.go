package models

import (
	"time"
)

type InviteStatus string

const (
	InviteStatusInvited    InviteStatus = "INVITED"
	InviteStatusReady      InviteStatus = "READY"
	InviteStatusInProgress InviteStatus = "IN_PROGRESS"
	InviteStatusSubmitted  InviteStatus = "SUBMITTED"
	InviteStatusExpired    InviteStatus = "EXPIRED"
	InviteStatusRevoked    InviteStatus = "REVOKED"
)

type EmailDeliveryStatus string

const (
	EmailPending EmailDeliveryStatus = "PENDING"
	EmailSent    EmailDeliveryStatus = "SENT"
	EmailFailed  EmailDeliveryStatus = "FAILED"
)

// CandidateInvite is one candidate's enrollment in one test. The jti of
// the signed invite claim is stored only as a SHA-256 hash; the usedAt
// timestamp is the one-time-use serialization point.
type CandidateInvite struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	TestID      uint   `json:"test_id" gorm:"not null;uniqueIndex:idx_invite_test_email;uniqueIndex:idx_invite_test_candidate"`
	Email       string `json:"email" gorm:"not null;size:255;uniqueIndex:idx_invite_test_email"`
	CandidateID uint   `json:"candidate_id" gorm:"not null;index;uniqueIndex:idx_invite_test_candidate"`

	Status       InviteStatus `json:"status" gorm:"not null;default:INVITED"`
	HasAttempted bool         `json:"has_attempted" gorm:"default:false"`

	// One-time-use token material.
	JTIHash   string     `json:"-" gorm:"size:64"`
	InvitedAt time.Time  `json:"invited_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`

	EmailStatus EmailDeliveryStatus `json:"email_status" gorm:"not null;default:PENDING"`
	LastError   *string             `json:"last_error" gorm:"type:text"`

	FirstOpenAt *time.Time `json:"first_open_at"`
	StartedAt   *time.Time `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Candidate User `json:"-" gorm:"foreignKey:CandidateID"`
}

func (CandidateInvite) TableName() string {
	return "candidate_invites"
}

// EffectiveExpiry resolves the instant after which the invite link is
// dead: the stored expiry when present; invitedAt + ttl clamped to the
// deadline when only invitedAt is known; the deadline itself otherwise.
func (ci *CandidateInvite) EffectiveExpiry(deadline time.Time, ttl time.Duration) time.Time {
	if ci.ExpiresAt != nil {
		return *ci.ExpiresAt
	}
	if !ci.InvitedAt.IsZero() {
		computed := ci.InvitedAt.Add(ttl)
		if computed.After(deadline) {
			return deadline
		}
		return computed
	}
	return deadline
}
