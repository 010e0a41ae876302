package handlers

import (
	"net/http"

	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	userService   services.UserService
	secureCookies bool
}

func NewAuthHandler(userService services.UserService, logger utils.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   NewBaseHandler(logger),
		userService:   userService,
		secureCookies: secureCookies,
	}
}

// Login authenticates with email and password and returns a session
// token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	resp, err := h.userService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Login successful. Welcome back!",
		Data: gin.H{
			"token": resp.Token,
			"user":  resp.User.Sanitized(),
		},
	})
}

// Signup registers a candidate account and sends the verification
// code.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	if _, err := h.userService.Signup(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Success! Please verify the code sent to your email.",
	})
}

// VerifyOTP confirms the emailed verification code.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req services.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body", Details: err.Error()})
		return
	}

	if _, err := h.userService.VerifyOTP(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Verified! An admin will approve your account shortly.",
	})
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Logged out",
	})
}
