package events

import (
	"time"
)

// EventType represents different types of lifecycle events
type EventType string

const (
	// Invite events
	EventInvitesIssued  EventType = "invite.issued"
	EventInviteRedeemed EventType = "invite.redeemed"

	// Attempt events
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptEvaluated EventType = "attempt.evaluated"

	// Test events
	EventTestCreated EventType = "test.created"
)

// LifecycleEvent is the envelope for every event this service emits.
type LifecycleEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type InvitesIssuedEvent struct {
	TestID    uint     `json:"test_id"`
	TestName  string   `json:"test_name"`
	IssuedBy  uint     `json:"issued_by"`
	Emails    []string `json:"emails"`
	InvitedAt time.Time `json:"invited_at"`
}

type InviteRedeemedEvent struct {
	TestID      uint      `json:"test_id"`
	CandidateID uint      `json:"candidate_id"`
	Email       string    `json:"email"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

type AttemptSubmittedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	TestID      uint      `json:"test_id"`
	TestName    string    `json:"test_name"`
	CandidateID uint      `json:"candidate_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type AttemptEvaluatedEvent struct {
	AttemptID    uint      `json:"attempt_id"`
	TestID       uint      `json:"test_id"`
	CandidateID  uint      `json:"candidate_id"`
	TotalAwarded float64   `json:"total_awarded"`
	Percentage   int       `json:"percentage"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

type TestCreatedEvent struct {
	TestID    uint   `json:"test_id"`
	TestName  string `json:"test_name"`
	Slug      string `json:"slug"`
	CreatedBy uint   `json:"created_by"`
}
