package handlers

import (
	"net/http"

	"justicia-backend/service"

	"github.com/gin-gonic/gin"
)

// ReferenceHandler serves the legal reference data
type ReferenceHandler struct {
	referenceService *service.ReferenceService
}

// NewReferenceHandler creates a new reference handler
func NewReferenceHandler(referenceService *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// ListArticles handles GET /api/articles
func (h *ReferenceHandler) ListArticles(c *gin.Context) {
	articles, err := h.referenceService.ListArticles(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "LIST_FAILED")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": articles})
}

// ListPrecedents handles GET /api/precedents?case_type=
func (h *ReferenceHandler) ListPrecedents(c *gin.Context) {
	precedents, err := h.referenceService.ListPrecedents(c.Request.Context(), c.Query("case_type"))
	if err != nil {
		respondServiceError(c, err, "LIST_FAILED")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": precedents})
}

// ListCriteria handles GET /api/criteria
func (h *ReferenceHandler) ListCriteria(c *gin.Context) {
	criteria, err := h.referenceService.ListCriteria(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "LIST_FAILED")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": criteria})
}

// GetRules handles GET /api/rules
func (h *ReferenceHandler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.referenceService.Rules()})
}
