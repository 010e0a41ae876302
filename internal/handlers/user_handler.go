package handlers

import (
	"net/http"
	"strconv"

	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// CreateUser provisions an HR or candidate account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Creating user", "role", req.Role)

	user, err := h.userService.CreateUser(c.Request.Context(), &req, currentUserRole(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: string(user.Role) + " created successfully",
		Data:    user.Sanitized(),
	})
}

// ListPending returns unapproved candidate signups.
func (h *UserHandler) ListPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	resp, err := h.userService.PendingCandidates(c.Request.Context(), services.PendingUserFilters{
		Search: c.Query("search"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Pending users fetched",
		Data: gin.H{
			"users": resp.Users,
			"total": resp.Total,
			"page":  page,
			"limit": limit,
		},
	})
}

// Approve activates a verified candidate account.
func (h *UserHandler) Approve(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userService.Approve(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User account activated successfully",
		Data:    user.Sanitized(),
	})
}

// Reject deletes an unapproved signup.
func (h *UserHandler) Reject(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.userService.Reject(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "User request rejected and deleted",
	})
}
