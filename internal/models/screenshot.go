package models

import "time"

// ProctoringScreenshot records one uploaded webcam/screen capture and
// where it landed in object storage.
type ProctoringScreenshot struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	TestID      uint   `json:"test_id" gorm:"not null;index"`
	CandidateID uint   `json:"candidate_id" gorm:"not null;index"`
	SessionID   string `json:"session_id" gorm:"not null;size:128;index"`
	TestSlug    string `json:"test_slug" gorm:"size:32"`

	ObjectKey   string `json:"object_key" gorm:"not null;size:512"`
	URL         string `json:"url" gorm:"size:1024"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type" gorm:"size:100"`

	TakenAt   time.Time `json:"taken_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProctoringScreenshot) TableName() string {
	return "proctoring_screenshots"
}
