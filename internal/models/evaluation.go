package models

type Correctness string

const (
	CorrectnessCorrect   Correctness = "correct"
	CorrectnessPartial   Correctness = "partial"
	CorrectnessIncorrect Correctness = "incorrect"
	CorrectnessUnknown   Correctness = "unknown"
)

// QuestionEvaluation is the grader's verdict for a single answered
// question. AwardedMarks is always clamped into [0, MaxMarks] before
// persistence regardless of what the model reported.
type QuestionEvaluation struct {
	QuestionID      string       `json:"questionId"`
	Type            QuestionType `json:"type"`
	Prompt          string       `json:"prompt"`
	CandidateAnswer interface{}  `json:"candidateAnswer"`
	MaxMarks        float64      `json:"maxMarks"`
	AwardedMarks    float64      `json:"awardedMarks"`
	Correctness     Correctness  `json:"correctness"`
	Feedback        string       `json:"feedback"`
}

// Evaluation is the sanitized grading result attached to an attempt.
// TotalAwarded, TotalPossible and Percentage are recomputed server-side
// from the clamped per-question values.
type Evaluation struct {
	PerQuestion     []QuestionEvaluation `json:"perQuestion"`
	TotalAwarded    float64              `json:"totalAwarded"`
	TotalPossible   float64              `json:"totalPossible"`
	Percentage      int                  `json:"percentage"`
	OverallFeedback string               `json:"overallFeedback"`
}
