package handlers

import (
	"fmt"
	"net/http"

	"justicia-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DecisionHandler handles HTTP requests for decisions
type DecisionHandler struct {
	decisionService *service.DecisionService
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(decisionService *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{decisionService: decisionService}
}

// DecideCase handles POST /api/cases/:id/decide
func (h *DecisionHandler) DecideCase(c *gin.Context) {
	id, ok := parseID(c, "id", "case")
	if !ok {
		return
	}

	result, err := h.decisionService.DecideCase(c.Request.Context(), service.DecideCaseRequest{CaseID: id})
	if err != nil {
		respondServiceError(c, err, "DECIDE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"decision":    result.Decision,
			"case_status": result.Status,
		},
	})
}

// ListDecisions handles GET /api/cases/:id/decisions
func (h *DecisionHandler) ListDecisions(c *gin.Context) {
	id, ok := parseID(c, "id", "case")
	if !ok {
		return
	}

	result, err := h.decisionService.ListDecisions(c.Request.Context(), service.ListDecisionsRequest{CaseID: id})
	if err != nil {
		respondServiceError(c, err, "LIST_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Decisions,
	})
}

// ApproveDecisionRequest represents the request body for signing off a decision
type ApproveDecisionRequest struct {
	OfficialID   string `json:"official_id" binding:"required"`
	Observations string `json:"observations"`
}

// ApproveDecision handles POST /api/decisions/:id/approve
func (h *DecisionHandler) ApproveDecision(c *gin.Context) {
	id, ok := parseID(c, "id", "decision")
	if !ok {
		return
	}

	var req ApproveDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	officialID, err := uuid.Parse(req.OfficialID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_OFFICIAL_ID", "Invalid official_id format")
		return
	}

	result, err := h.decisionService.ApproveDecision(c.Request.Context(), service.ApproveDecisionRequest{
		DecisionID:   id,
		OfficialID:   officialID,
		Observations: req.Observations,
	})
	if err != nil {
		respondServiceError(c, err, "APPROVE_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Decision,
	})
}

// GetDecisionDocument handles GET /api/decisions/:id/document
func (h *DecisionHandler) GetDecisionDocument(c *gin.Context) {
	id, ok := parseID(c, "id", "decision")
	if !ok {
		return
	}

	doc, err := h.decisionService.GetDecisionDocument(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "DOWNLOAD_FAILED")
		return
	}
	defer doc.Body.Close()

	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", doc.Filename),
	})
}
