package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionTrueFalse   QuestionType = "trueFalse"
	QuestionDescriptive QuestionType = "descriptive"
)

type Test struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"test_name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Category    string `json:"category" gorm:"not null;size:100" validate:"required"`
	Duration    int    `json:"duration" gorm:"not null" validate:"required,min=1,max=600"` // minutes
	Description string `json:"description" gorm:"type:text" validate:"required,max=2000"`

	// Access window for the whole test; the hard upper bound for every
	// invite expiry.
	AccessDeadline time.Time `json:"access_deadline" gorm:"not null;index"`

	// Proctoring configuration.
	EnableProctoring    bool `json:"enable_proctoring" gorm:"default:true"`
	ScreenshotFrequency int  `json:"screenshot_frequency" gorm:"default:30"` // seconds
	ForceFullScreen     bool `json:"force_full_screen" gorm:"default:true"`

	// Human-shareable identifiers.
	Slug     string `json:"slug" gorm:"uniqueIndex;not null;size:32"`
	TestLink string `json:"test_link" gorm:"uniqueIndex;not null;size:255"`

	CreatedBy uint           `json:"created_by" gorm:"not null;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	MCQs        []MCQQuestion         `json:"mcqs" gorm:"foreignKey:TestID"`
	TrueFalse   []TrueFalseQuestion   `json:"true_false" gorm:"foreignKey:TestID"`
	Descriptive []DescriptiveQuestion `json:"descriptive" gorm:"foreignKey:TestID"`
	Candidates  []CandidateInvite     `json:"candidates" gorm:"foreignKey:TestID"`
	Creator     User                  `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Test) TableName() string {
	return "tests"
}

type MCQQuestion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TestID    uint           `json:"test_id" gorm:"not null;index"`
	Question  string         `json:"question" gorm:"type:text;not null" validate:"required"`
	Options   datatypes.JSON `json:"options" gorm:"type:jsonb;not null"` // []string
	Marks     float64        `json:"marks" gorm:"not null" validate:"required,gt=0"`
	SortOrder int            `json:"sort_order" gorm:"default:0"`
}

func (MCQQuestion) TableName() string {
	return "mcq_questions"
}

type TrueFalseQuestion struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	TestID    uint    `json:"test_id" gorm:"not null;index"`
	Question  string  `json:"question" gorm:"type:text;not null" validate:"required"`
	Marks     float64 `json:"marks" gorm:"not null" validate:"required,gt=0"`
	SortOrder int     `json:"sort_order" gorm:"default:0"`
}

func (TrueFalseQuestion) TableName() string {
	return "true_false_questions"
}

type DescriptiveQuestion struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	TestID    uint    `json:"test_id" gorm:"not null;index"`
	Question  string  `json:"question" gorm:"type:text;not null" validate:"required"`
	Marks     float64 `json:"marks" gorm:"not null" validate:"required,gt=0"`
	SortOrder int     `json:"sort_order" gorm:"default:0"`
}

func (DescriptiveQuestion) TableName() string {
	return "descriptive_questions"
}
