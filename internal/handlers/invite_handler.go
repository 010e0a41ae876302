package handlers

import (
	"net/http"

	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/token"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	BaseHandler
	inviteService services.InviteService
	secureCookies bool
}

func NewInviteHandler(inviteService services.InviteService, logger utils.Logger, secureCookies bool) *InviteHandler {
	return &InviteHandler{
		BaseHandler:   NewBaseHandler(logger),
		inviteService: inviteService,
		secureCookies: secureCookies,
	}
}

// AddCandidates enrolls a batch of emails on a test, moves its access
// deadline, and emails each new candidate a single-use invite link.
func (h *InviteHandler) AddCandidates(c *gin.Context) {
	testID := h.parseIDParam(c, "id")
	if testID == 0 {
		return
	}

	var req services.AddCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Enrolling candidates", "test_id", testID, "count", len(req.Emails))

	result, err := h.inviteService.AddCandidates(c.Request.Context(), testID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Candidates enrolled and invitation emails dispatched",
		Data:    result,
	})
}

// Redeem resolves an invite token: it activates the candidate account,
// consumes the link, starts a session cookie, and tells the client
// where to go.
func (h *InviteHandler) Redeem(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			raw = body.Token
		}
	}
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing token"})
		return
	}

	result, err := h.inviteService.Redeem(c.Request.Context(), raw)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		result.SessionToken,
		int(token.CandidateSessionTTL.Seconds()),
		"/",
		"",
		h.secureCookies,
		true,
	)

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Invite verified, account activated, session started.",
		Data: gin.H{
			"redirectTo": result.RedirectPath,
			"slug":       result.TestSlug,
			"user":       result.Candidate.Sanitized(),
		},
	})
}
