package handlers

import (
	"net/http"
	"strconv"

	"justicia-backend/engine"
	"justicia-backend/models"
	"justicia-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaseHandler handles HTTP requests for cases
type CaseHandler struct {
	caseService *service.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *service.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCaseRequest represents the request body for filing a case.
// claimed_amount and facts must be present; facts may be empty. Optional
// flags are pointers so that an absent has_response means the respondent
// answered.
type CreateCaseRequest struct {
	ClaimantID                string   `json:"claimant_id" binding:"required"`
	CaseType                  string   `json:"case_type"`
	RespondentName            string   `json:"respondent_name"`
	ClaimedAmount             *float64 `json:"claimed_amount"`
	Facts                     *string  `json:"facts"`
	Evidence                  string   `json:"evidence"`
	HasResponse               *bool    `json:"has_response"`
	RaisesConstitutionalIssue *bool    `json:"raises_constitutional_issue"`
}

// CreateCase handles POST /api/cases
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	claimantID, err := uuid.Parse(req.ClaimantID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_CLAIMANT_ID", "Invalid claimant_id format")
		return
	}
	if req.ClaimedAmount == nil {
		respondServiceError(c, &engine.FieldError{Field: "claimed_amount"}, "CREATE_FAILED")
		return
	}
	if req.Facts == nil {
		respondServiceError(c, &engine.FieldError{Field: "facts"}, "CREATE_FAILED")
		return
	}

	serviceReq := service.CreateCaseRequest{
		ClaimantID:     claimantID,
		CaseType:       req.CaseType,
		RespondentName: req.RespondentName,
		ClaimedAmount:  *req.ClaimedAmount,
		Facts:          *req.Facts,
		Evidence:       req.Evidence,
		HasResponse:    true,
	}
	if req.HasResponse != nil {
		serviceReq.HasResponse = *req.HasResponse
	}
	if req.RaisesConstitutionalIssue != nil {
		serviceReq.RaisesConstitutionalIssue = *req.RaisesConstitutionalIssue
	}

	result, err := h.caseService.CreateCase(c.Request.Context(), serviceReq)
	if err != nil {
		respondServiceError(c, err, "CREATE_FAILED")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"case":           result.Case,
			"classification": result.Classification,
		},
	})
}

// GetCase handles GET /api/cases/:id
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, ok := parseID(c, "id", "case")
	if !ok {
		return
	}

	result, err := h.caseService.GetCase(c.Request.Context(), service.GetCaseRequest{ID: id})
	if err != nil {
		respondServiceError(c, err, "GET_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"case":        result.Case,
			"decision":    result.Decision,
			"audit_trail": result.AuditTrail,
		},
	})
}

// UpdateCaseRequest represents the request body for updating a case.
// Omitted fields keep their stored values.
type UpdateCaseRequest struct {
	CaseType                  *string  `json:"case_type"`
	RespondentName            *string  `json:"respondent_name"`
	ClaimedAmount             *float64 `json:"claimed_amount"`
	Facts                     *string  `json:"facts"`
	Evidence                  *string  `json:"evidence"`
	HasResponse               *bool    `json:"has_response"`
	RaisesConstitutionalIssue *bool    `json:"raises_constitutional_issue"`
}

// UpdateCase handles PUT /api/cases/:id
func (h *CaseHandler) UpdateCase(c *gin.Context) {
	id, ok := parseID(c, "id", "case")
	if !ok {
		return
	}

	var req UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.caseService.UpdateCase(c.Request.Context(), service.UpdateCaseRequest{
		ID:                        id,
		CaseType:                  req.CaseType,
		RespondentName:            req.RespondentName,
		ClaimedAmount:             req.ClaimedAmount,
		Facts:                     req.Facts,
		Evidence:                  req.Evidence,
		HasResponse:               req.HasResponse,
		RaisesConstitutionalIssue: req.RaisesConstitutionalIssue,
	})
	if err != nil {
		respondServiceError(c, err, "UPDATE_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"case":           result.Case,
			"classification": result.Classification,
			"previous_tier":  result.PreviousTier,
		},
	})
}

// ListCases handles GET /api/cases
func (h *CaseHandler) ListCases(c *gin.Context) {
	var req service.ListCasesRequest

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.CaseStatus(statusStr)
		switch status {
		case models.CaseStatusClassified, models.CaseStatusUnderReview, models.CaseStatusResolved:
			req.Status = &status
		default:
			respondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be classified, under_review or resolved")
			return
		}
	}
	if tierStr := c.Query("tier"); tierStr != "" {
		tier, err := strconv.Atoi(tierStr)
		if err != nil || tier < 1 || tier > 4 {
			respondError(c, http.StatusBadRequest, "INVALID_TIER", "tier must be an integer between 1 and 4")
			return
		}
		req.Tier = &tier
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		req.Limit = limit
	}

	result, err := h.caseService.ListCases(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "LIST_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Cases,
	})
}

// GetStatistics handles GET /api/statistics
func (h *CaseHandler) GetStatistics(c *gin.Context) {
	stats, err := h.caseService.GetStatistics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "STATISTICS_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
