package models

import (
	"time"

	"github.com/google/uuid"
)

// EvidenceFile represents a document attached to a case as evidence
type EvidenceFile struct {
	ID          uuid.UUID  `json:"id"`
	CaseID      uuid.UUID  `json:"case_id"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
