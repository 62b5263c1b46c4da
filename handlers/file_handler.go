package handlers

import (
	"fmt"
	"net/http"

	"justicia-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler handles HTTP requests for evidence files
type FileHandler struct {
	evidenceService *service.EvidenceService
}

// NewFileHandler creates a new file handler
func NewFileHandler(evidenceService *service.EvidenceService) *FileHandler {
	return &FileHandler{evidenceService: evidenceService}
}

// UploadEvidence handles POST /api/cases/:id/evidence
func (h *FileHandler) UploadEvidence(c *gin.Context) {
	caseID, ok := parseID(c, "id", "case")
	if !ok {
		return
	}

	var uploadedBy *uuid.UUID
	if userIDStr := c.PostForm("uploaded_by"); userIDStr != "" {
		uid, err := uuid.Parse(userIDStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Invalid uploaded_by format")
			return
		}
		uploadedBy = &uid
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "File is required")
		return
	}

	// Reject before opening when the declared size is already over the cap
	if fileHeader.Size > h.evidenceService.MaxSize() {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("File size exceeds maximum of %d bytes", h.evidenceService.MaxSize()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return
	}
	defer file.Close()

	result, err := h.evidenceService.UploadEvidence(c.Request.Context(), service.UploadEvidenceRequest{
		CaseID:      caseID,
		UploadedBy:  uploadedBy,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Data:        file,
	})
	if err != nil {
		respondServiceError(c, err, "UPLOAD_FAILED")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result.File,
	})
}

// ListEvidence handles GET /api/cases/:id/evidence
func (h *FileHandler) ListEvidence(c *gin.Context) {
	caseID, ok := parseID(c, "id", "case")
	if !ok {
		return
	}

	files, err := h.evidenceService.ListEvidence(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err, "LIST_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    files,
	})
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := parseID(c, "id", "file")
	if !ok {
		return
	}

	file, err := h.evidenceService.GetFile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "GET_FAILED")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    file,
	})
}

// DownloadFile handles GET /api/files/:id/download
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, ok := parseID(c, "id", "file")
	if !ok {
		return
	}

	file, reader, err := h.evidenceService.OpenFile(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "DOWNLOAD_FAILED")
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", file.Filename),
	})
}
