package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
	gradingService services.GradingService
}

func NewAttemptHandler(attemptService services.AttemptService, gradingService services.GradingService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
		gradingService: gradingService,
	}
}

// Submit accepts a candidate's one-shot submission and grades it
// synchronously.
func (h *AttemptHandler) Submit(c *gin.Context) {
	var req services.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting attempt", "slug", req.Test.Slug, "answers", len(req.Answers))

	result, err := h.attemptService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Submission received and evaluated",
		Data:    result,
	})
}

// GetAttempt returns one attempt with its frozen submission and
// evaluation.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetByID(c.Request.Context(), id, userID, currentUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// ListAttempts returns attempts filtered by test, candidate, or
// status.
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	filters := services.AttemptFilters{
		Status:    models.AttemptStatus(c.Query("status")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    c.DefaultQuery("sort_by", "submitted_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if raw := c.Query("test_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			testID := uint(id)
			filters.TestID = &testID
		}
	}
	if raw := c.Query("candidate_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			candidateID := uint(id)
			filters.CandidateID = &candidateID
		}
	}

	resp, err := h.attemptService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempts fetched",
		Data: gin.H{
			"attempts": resp.Attempts,
			"total":    resp.Total,
			"page":     page,
			"limit":    limit,
		},
	})
}

// Evaluate runs (or with force=true re-runs) the automated grader on
// a stored attempt.
func (h *AttemptHandler) Evaluate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	force := strings.EqualFold(c.Query("force"), "true")

	h.LogRequest(c, "Evaluating attempt", "attempt_id", id, "force", force)

	evaluation, err := h.gradingService.Evaluate(c.Request.Context(), id, force)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Evaluation complete",
		Data:    evaluation,
	})
}
