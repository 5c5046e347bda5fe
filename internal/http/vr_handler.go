package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"protopia/internal/service"
)

// VRHandler exposes the spoken-interview endpoints.
type VRHandler struct {
	logger *zap.Logger
	svc    *service.AssessmentService
}

func NewVRHandler(logger *zap.Logger, svc *service.AssessmentService) *VRHandler {
	return &VRHandler{logger: logger, svc: svc}
}

// Start handles POST /assessment/vr/start.
func (h *VRHandler) Start(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	// Body is optional; default question count applies.
	_ = c.ShouldBindJSON(&req)

	session, questions, err := h.svc.StartVRSession(c.Request.Context(), claims.UserID, req.Count)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"questions":  questions,
	})
}

// Answer handles POST /assessment/vr/answer.
func (h *VRHandler) Answer(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req service.VRAnswerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid vr answer", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.svc.AppendVRAnswer(c.Request.Context(), claims.UserID, req); err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recorded"})
}

// Complete handles POST /assessment/vr/complete.
func (h *VRHandler) Complete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid vr complete request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, vrScore, err := h.svc.CompleteVRSession(c.Request.Context(), claims.UserID, req.SessionID)
	if err != nil {
		writeServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":               "Interview finalized.",
		"vr_score":              vrScore,
		"final_integrity_score": result.FinalScore,
		"verdict":               result.Verdict,
	})
}
