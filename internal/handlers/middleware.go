package handlers

import (
	"net/http"
	"strings"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/token"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the candidate session JWT
// minted on invite redemption.
const SessionCookieName = "testadmin_session"

// AuthMiddleware authenticates requests from a bearer token or the
// session cookie and stores the claims on the context.
func AuthMiddleware(sessions *token.SessionCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				raw = cookie
			}
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Not authenticated",
			})
			return
		}

		claims, err := sessions.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired session",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", models.UserRole(claims.Role))
		c.Next()
	}
}

// RequireRoles rejects authenticated requests whose role is not in the
// allow list.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Not authenticated",
			})
			return
		}
		current := role.(models.UserRole)
		for _, allowed := range roles {
			if current == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// currentUserID returns the authenticated user id, writing the 401
// when absent.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authenticated"})
		return 0, false
	}
	return userID.(uint), true
}

func currentUserRole(c *gin.Context) models.UserRole {
	if role, exists := c.Get("user_role"); exists {
		return role.(models.UserRole)
	}
	return ""
}
