package handlers

import (
	"time"

	"github.com/dotwork/testadmin-service/internal/models"
	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/token"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	sessions *token.SessionCodec

	authHandler       *AuthHandler
	userHandler       *UserHandler
	testHandler       *TestHandler
	inviteHandler     *InviteHandler
	attemptHandler    *AttemptHandler
	proctoringHandler *ProctoringHandler
}

func NewHandlerManager(
	userService services.UserService,
	testService services.TestService,
	inviteService services.InviteService,
	attemptService services.AttemptService,
	gradingService services.GradingService,
	proctoringService services.ProctoringService,
	exportService services.ExportService,
	sessions *token.SessionCodec,
	logger utils.Logger,
	secureCookies bool,
) *HandlerManager {
	return &HandlerManager{
		sessions:          sessions,
		authHandler:       NewAuthHandler(userService, logger, secureCookies),
		userHandler:       NewUserHandler(userService, logger),
		testHandler:       NewTestHandler(testService, exportService, logger),
		inviteHandler:     NewInviteHandler(inviteService, logger, secureCookies),
		attemptHandler:    NewAttemptHandler(attemptService, gradingService, logger),
		proctoringHandler: NewProctoringHandler(proctoringService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, logger utils.Logger) {
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", HealthCheck)

	authed := AuthMiddleware(hm.sessions)
	staffOnly := RequireRoles(models.RoleHR, models.RoleAdmin)
	candidateOnly := RequireRoles(models.RoleCandidate)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", hm.authHandler.Signup)
			auth.POST("/verify-otp", hm.authHandler.VerifyOTP)
			auth.POST("/login", hm.authHandler.Login)
			auth.POST("/logout", hm.authHandler.Logout)
		}

		// Invite redemption is public: the token in the link is the
		// credential.
		invites := v1.Group("/invites")
		{
			invites.GET("/redeem", hm.inviteHandler.Redeem)
			invites.POST("/redeem", hm.inviteHandler.Redeem)
		}

		// Test routes
		tests := v1.Group("/tests", authed)
		{
			tests.POST("", staffOnly, hm.testHandler.CreateTest)
			tests.GET("", staffOnly, hm.testHandler.ListTests)
			tests.GET("/assigned", candidateOnly, hm.testHandler.ListAssigned)
			tests.GET("/slug/:slug", hm.testHandler.GetTestBySlug)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PATCH("/:id/deadline", staffOnly, hm.testHandler.UpdateDeadline)
			tests.POST("/:id/candidates", staffOnly, hm.inviteHandler.AddCandidates)
			tests.GET("/:id/results/export", staffOnly, hm.testHandler.ExportResults)
		}

		// Attempt routes
		attempts := v1.Group("/attempts", authed)
		{
			attempts.POST("/submit", candidateOnly, hm.attemptHandler.Submit)
			attempts.GET("", staffOnly, hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/evaluate", staffOnly, hm.attemptHandler.Evaluate)
		}

		// User administration routes
		users := v1.Group("/users", authed, staffOnly)
		{
			users.POST("", hm.userHandler.CreateUser)
			users.GET("/pending", hm.userHandler.ListPending)
			users.POST("/:id/approve", hm.userHandler.Approve)
			users.DELETE("/:id", hm.userHandler.Reject)
		}

		// Proctoring routes
		proctoring := v1.Group("/proctoring", authed)
		{
			proctoring.POST("/screenshots", candidateOnly, hm.proctoringHandler.UploadScreenshot)
			proctoring.GET("/screenshots", staffOnly, hm.proctoringHandler.ListScreenshots)
		}
	}
}
