package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptReceived  AttemptStatus = "received"
	AttemptEvaluated AttemptStatus = "evaluated"
)

// AnswerSnapshot freezes one answered question at submission time:
// prompt, marks, and options are copied from the authoritative test so
// later edits to the test cannot change what was graded.
type AnswerSnapshot struct {
	QuestionID string       `json:"questionId"`
	Type       QuestionType `json:"type"`
	Prompt     string       `json:"prompt"`
	Marks      float64      `json:"marks"`
	Options    []string     `json:"options,omitempty"` // MCQ only
	Answer     interface{}  `json:"answer"`
}

// Submission is the frozen payload stored inside an attempt.
type Submission struct {
	TestID   string                 `json:"testId"`
	Slug     string                 `json:"slug"`
	TestName string                 `json:"testName"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Answers  []AnswerSnapshot       `json:"answers"`
	Raw      interface{}            `json:"raw,omitempty"`
}

// Attempt is one candidate's single submission for one test. The
// (test, candidate) pair is unique; the constraint is the final
// backstop against concurrent duplicate submissions.
type Attempt struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	TestID         uint   `json:"test_id" gorm:"not null;uniqueIndex:idx_attempt_test_candidate"`
	CandidateID    uint   `json:"candidate_id" gorm:"not null;uniqueIndex:idx_attempt_test_candidate"`
	CandidateEmail string `json:"candidate_email" gorm:"not null;size:255;index"`

	Submission datatypes.JSON `json:"submission" gorm:"type:jsonb;not null"` // Submission

	Status     AttemptStatus  `json:"status" gorm:"not null;default:received;index"`
	Evaluation datatypes.JSON `json:"evaluation" gorm:"type:jsonb"` // *Evaluation, null until graded

	DurationSeconds *int      `json:"duration_seconds"`
	SubmittedAt     time.Time `json:"submitted_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Test      Test `json:"-" gorm:"foreignKey:TestID"`
	Candidate User `json:"-" gorm:"foreignKey:CandidateID"`
}

func (Attempt) TableName() string {
	return "attempts"
}
