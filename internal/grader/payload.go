package grader

// Question is one question as presented to the model. The candidate's
// answer travels separately in the Answers map, keyed by question id;
// correctness is judged by the model itself against the rubric.
type Question struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"` // MCQ only
	Marks   float64  `json:"marks"`
}

// Payload is the compact grading request built from a frozen attempt.
type Payload struct {
	TestID          string                 `json:"testId"`
	Slug            string                 `json:"slug"`
	TestName        string                 `json:"testName"`
	CandidateEmail  string                 `json:"candidateEmail"`
	DurationSeconds *int                   `json:"durationSeconds"`
	Questions       []Question             `json:"questions"`
	Answers         map[string]interface{} `json:"answers"`
}

// QuestionResult is the model's verdict for one question.
type QuestionResult struct {
	QuestionID      string  `json:"questionId"`
	Type            string  `json:"type"`
	Prompt          string  `json:"prompt"`
	CandidateAnswer string  `json:"candidateAnswer"`
	MaxMarks        float64 `json:"maxMarks"`
	AwardedMarks    float64 `json:"awardedMarks"`
	Correctness     string  `json:"correctness"`
	Feedback        string  `json:"feedback"`
}

// Result is the parsed model response. Totals are untrusted until the
// caller recomputes them.
type Result struct {
	PerQuestion     []QuestionResult `json:"perQuestion"`
	TotalAwarded    float64          `json:"totalAwarded"`
	TotalPossible   float64          `json:"totalPossible"`
	Percentage      float64          `json:"percentage"`
	OverallFeedback string           `json:"overallFeedback"`
}
