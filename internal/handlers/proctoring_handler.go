package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dotwork/testadmin-service/internal/services"
	"github.com/dotwork/testadmin-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProctoringHandler struct {
	BaseHandler
	proctoringService services.ProctoringService
}

func NewProctoringHandler(proctoringService services.ProctoringService, logger utils.Logger) *ProctoringHandler {
	return &ProctoringHandler{
		BaseHandler:       NewBaseHandler(logger),
		proctoringService: proctoringService,
	}
}

// UploadScreenshot accepts one multipart capture from a candidate's
// proctored session. The file field is "screenshot"; sessionId and
// takenAt are required form fields, plus either testSlug or testId.
func (h *ProctoringHandler) UploadScreenshot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Screenshot file is required", Details: err.Error()})
		return
	}
	if fileHeader.Size > services.MaxScreenshotBytes {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Screenshot too large",
			Details: "limit is " + strconv.Itoa(services.MaxScreenshotBytes) + " bytes",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Could not read screenshot", Details: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxScreenshotBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Could not read screenshot", Details: err.Error()})
		return
	}

	takenAt, err := parseTakenAt(c.PostForm("takenAt"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid takenAt", Details: "expected RFC3339 or unix milliseconds"})
		return
	}

	upload := &services.ScreenshotUpload{
		TestSlug:    c.PostForm("testSlug"),
		SessionID:   c.PostForm("sessionId"),
		TakenAt:     takenAt,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        data,
	}
	if raw := c.PostForm("testId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			upload.TestID = uint(id)
		}
	}

	shot, err := h.proctoringService.SaveScreenshot(c.Request.Context(), upload, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Screenshot stored",
		Data:    shot,
	})
}

// ListScreenshots returns the captures recorded for one candidate on
// one test, ordered by capture time.
func (h *ProctoringHandler) ListScreenshots(c *gin.Context) {
	testID, err := strconv.ParseUint(c.Query("test_id"), 10, 32)
	if err != nil || testID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid test_id", Details: "must be a positive integer"})
		return
	}
	candidateID, err := strconv.ParseUint(c.Query("candidate_id"), 10, 32)
	if err != nil || candidateID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid candidate_id", Details: "must be a positive integer"})
		return
	}

	shots, err := h.proctoringService.ListScreenshots(c.Request.Context(), uint(testID), uint(candidateID), c.Query("session_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Screenshots fetched",
		Data: gin.H{
			"screenshots": shots,
			"total":       len(shots),
		},
	})
}

func parseTakenAt(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}
