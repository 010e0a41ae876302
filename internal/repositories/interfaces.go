package repositories

import (
	"github.com/dotwork/testadmin-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type PendingUserFilters struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type TestFilters struct {
	CreatedBy *uint  `json:"created_by"`
	Category  string `json:"category"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "created_at", "test_name", "access_deadline"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	TestID      *uint                `json:"test_id"`
	CandidateID *uint                `json:"candidate_id"`
	Status      models.AttemptStatus `json:"status"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
	SortBy      string               `json:"sort_by"`
	SortOrder   string               `json:"sort_order"`
}

// DeliveryOutcome is the per-recipient result of the post-commit email
// dispatch after an enrollment batch.
type DeliveryOutcome struct {
	Email  string                     `json:"email"`
	Status models.EmailDeliveryStatus `json:"status"`
	Error  string                     `json:"error,omitempty"`
}
