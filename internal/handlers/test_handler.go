package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	testService   services.TestService
	exportService services.ExportService
}

func NewTestHandler(testService services.TestService, exportService services.ExportService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler:   NewBaseHandler(logger),
		testService:   testService,
		exportService: exportService,
	}
}

// CreateTest authors a new test with its question sets.
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating test", "test_name", req.TestName)

	test, err := h.testService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Test created successfully",
		Data:    test,
	})
}

// ListTests returns tests, optionally filtered to the caller's own.
func (h *TestHandler) ListTests(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	filters := services.TestFilters{
		Category:  c.Query("category"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if c.Query("mine") == "true" {
		if userID, ok := currentUserID(c); ok {
			filters.CreatedBy = &userID
		} else {
			return
		}
	}

	resp, err := h.testService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Tests fetched",
		Data: gin.H{
			"tests": resp.Tests,
			"total": resp.Total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetTest returns one test with its questions and invite list.
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	test, err := h.testService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, test)
}

// GetTestBySlug returns the candidate-facing view of a test.
func (h *TestHandler) GetTestBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid slug"})
		return
	}

	test, err := h.testService.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, test)
}

// ListAssigned returns the tests the authenticated candidate is
// enrolled in.
func (h *TestHandler) ListAssigned(c *gin.Context) {
	email, exists := c.Get("user_email")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return
	}

	tests, err := h.testService.ListAssignedTo(c.Request.Context(), email.(string))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Assigned tests fetched",
		Data:    tests,
	})
}

type updateDeadlineRequest struct {
	AccessDeadline string `json:"access_deadline" validate:"required"`
}

// UpdateDeadline moves the test's access deadline.
func (h *TestHandler) UpdateDeadline(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req updateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	test, err := h.testService.UpdateDeadline(c.Request.Context(), id, req.AccessDeadline, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Deadline updated",
		Data:    test,
	})
}

// ExportResults streams the attempt results for a test as XLSX.
func (h *TestHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, filename, err := h.exportService.ExportResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
