package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"protopia/internal/service"
)

// AssessmentHandler exposes the MCQ/essay/progress endpoints.
type AssessmentHandler struct {
	logger *zap.Logger
	svc    *service.AssessmentService
}

func NewAssessmentHandler(logger *zap.Logger, svc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{logger: logger, svc: svc}
}

// Questions handles GET /assessment/questions.
func (h *AssessmentHandler) Questions(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	questions, err := h.svc.Questions(c.Request.Context(), claims.User())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// SubmitAnswers handles POST /assessment/submit.
func (h *AssessmentHandler) SubmitAnswers(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Responses map[string]string `json:"responses" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid mcq submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.SubmitAnswers(c.Request.Context(), claims.UserID, req.Responses); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "MCQ saved successfully.", "next": "ESSAY"})
}

// SubmitEssay handles POST /assessment/essay.
func (h *AssessmentHandler) SubmitEssay(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req service.EssaySubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid essay submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	analysis, err := h.svc.SubmitEssays(c.Request.Context(), claims.UserID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Essay saved. Proceed to VR.",
		"next":        "VR",
		"essay_score": analysis.FinalScore,
	})
}

// Progress handles GET /assessment/progress.
func (h *AssessmentHandler) Progress(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	prog, err := h.svc.Progress(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": prog.Status})
}

// FinalResult handles GET /assessment/final.
func (h *AssessmentHandler) FinalResult(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	result, err := h.svc.FinalResult(c.Request.Context(), claims.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"final_integrity_score": result.FinalScore,
		"verdict":               result.Verdict,
		"top_traits":            result.TopTraits,
	})
}

// Reset handles POST /assessment/reset.
func (h *AssessmentHandler) Reset(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	if err := h.svc.Reset(c.Request.Context(), claims.UserID); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assessment reset. You can start again."})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func (h *AssessmentHandler) writeServiceError(c *gin.Context, err error) {
	writeServiceError(c, h.logger, err)
}

func writeServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "field": verr.Field, "detail": verr.Reason})
	case errors.Is(err, service.ErrOutOfOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "session already completed"})
	case errors.Is(err, service.ErrResultNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "final result not ready yet"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "vr session not found"})
	case errors.Is(err, service.ErrInsufficientQuestionBank):
		c.JSON(http.StatusBadRequest, gin.H{"error": "not enough questions available"})
	case errors.Is(err, service.ErrDependencyMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("assessment request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
