package models

import (
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the processing status of a case
type CaseStatus string

const (
	CaseStatusClassified  CaseStatus = "classified"
	CaseStatusUnderReview CaseStatus = "under_review"
	CaseStatusResolved    CaseStatus = "resolved"
)

// Case types with dedicated handling in the rule table and the decision generator
const (
	CaseTypeMoneyCollection = "money collection"
	CaseTypeDamages         = "damages"
)

// Case represents a civil case filing
type Case struct {
	ID                        uuid.UUID  `json:"id"`
	CaseNumber                string     `json:"case_number"`
	CaseType                  string     `json:"case_type"`
	ClaimantID                uuid.UUID  `json:"claimant_id"`
	ClaimantName              string     `json:"claimant_name,omitempty"`
	RespondentName            string     `json:"respondent_name"`
	ClaimedAmount             float64    `json:"claimed_amount"`
	Facts                     string     `json:"facts"`
	Evidence                  string     `json:"evidence"`
	HasResponse               bool       `json:"has_response"`
	RaisesConstitutionalIssue bool       `json:"raises_constitutional_issue"`

	// Classification
	Tier                        int     `json:"tier"`
	Confidence                  float64 `json:"confidence"`
	ClassificationJustification string  `json:"classification_justification"`

	Status     CaseStatus `json:"status"`
	FiledAt    time.Time  `json:"filed_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ClassificationResult is the outcome of classifying a case
type ClassificationResult struct {
	Tier          int      `json:"tier"`
	Confidence    float64  `json:"confidence"`
	Justification string   `json:"justification"`
	Score         int      `json:"score"`
	Factors       []string `json:"factors"`
}

// Apply copies the classification onto the case, overwriting any previous one
func (r ClassificationResult) Apply(c *Case) {
	c.Tier = r.Tier
	c.Confidence = r.Confidence
	c.ClassificationJustification = r.Justification
}

// CaseFilter narrows case listings
type CaseFilter struct {
	Status *CaseStatus
	Tier   *int
	Limit  int
}

// CaseStatistics aggregates case counts
type CaseStatistics struct {
	ByTier   map[int]int        `json:"cases_by_tier"`
	ByStatus map[CaseStatus]int `json:"cases_by_status"`
	Resolved int                `json:"resolved"`
	Pending  int                `json:"pending"`
}
