package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result proposed or ordered by a decision
type Outcome string

const (
	OutcomeGrants                       Outcome = "grants"
	OutcomeGrantsPartial                Outcome = "grants_partial"
	OutcomeRejects                      Outcome = "rejects"
	OutcomeRequiresDeliberation         Outcome = "requires_deliberation"
	OutcomeRequiresDeliberationExpanded Outcome = "requires_deliberation_expanded"
	OutcomeRequiresAnalysis             Outcome = "requires_analysis"
)

// DecisionKind describes how much human involvement a decision carries
type DecisionKind string

const (
	DecisionKindAutomatic    DecisionKind = "automatic"
	DecisionKindAssisted     DecisionKind = "assisted"
	DecisionKindHuman        DecisionKind = "human"
	DecisionKindDeliberative DecisionKind = "deliberative"
)

// PerspectiveLabel identifies one of the argumentative framings of a tier 3 brief
type PerspectiveLabel string

const (
	PerspectiveFavorClaimant   PerspectiveLabel = "favor_claimant"
	PerspectiveBalanced        PerspectiveLabel = "balanced"
	PerspectiveFavorRespondent PerspectiveLabel = "favor_respondent"
)

// Perspective is one framing of the case offered for deliberation
type Perspective struct {
	Label           PerspectiveLabel `json:"label"`
	Focus           string           `json:"focus"`
	ProposedOutcome Outcome          `json:"proposed_outcome"`
	ProposedAmount  float64          `json:"proposed_amount"`
	Arguments       []string         `json:"arguments"`
}

// Perspectives represents the ordered perspectives of a decision
type Perspectives []Perspective

// Value implements driver.Valuer for JSONB
func (p Perspectives) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *Perspectives) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*p = nil
		return nil
	}

	if len(bytes) == 0 {
		*p = nil
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Decision represents a drafted resolution for a case
type Decision struct {
	ID                   uuid.UUID    `json:"id"`
	CaseID               uuid.UUID    `json:"case_id"`
	Kind                 DecisionKind `json:"kind"`
	Outcome              Outcome      `json:"outcome"`
	AwardedAmount        *float64     `json:"awarded_amount"`
	Justification        string       `json:"justification"`
	AppliedArticles      []string     `json:"applied_articles"`
	ConsideredPrecedents []string     `json:"considered_precedents,omitempty"`
	Perspectives         Perspectives `json:"perspectives,omitempty"`
	Confidence           float64      `json:"confidence"`

	// Sign-off
	ApprovedBy    *uuid.UUID `json:"approved_by,omitempty"`
	ApprovalNotes *string    `json:"approval_notes,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`

	DocumentPath *string   `json:"document_path,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}

// DecisionApproval records an official's sign-off on a decision
type DecisionApproval struct {
	DecisionID   uuid.UUID
	OfficialID   uuid.UUID
	Observations string
	ApprovedAt   time.Time
}
