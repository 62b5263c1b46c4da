package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEventType represents the kind of audited event
type AuditEventType string

const (
	AuditClassification    AuditEventType = "classification"
	AuditReclassification  AuditEventType = "reclassification"
	AuditDecisionGenerated AuditEventType = "decision_generated"
	AuditDecisionApproved  AuditEventType = "decision_approved"
	AuditEvidenceAttached  AuditEventType = "evidence_attached"
)

// AuditEvent is an append-only record of something that happened to a case
type AuditEvent struct {
	ID          uuid.UUID      `json:"id"`
	CaseID      uuid.UUID      `json:"case_id"`
	DecisionID  *uuid.UUID     `json:"decision_id,omitempty"`
	EventType   AuditEventType `json:"event_type"`
	Description string         `json:"description"`
	UserID      *uuid.UUID     `json:"user_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
