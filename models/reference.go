package models

import (
	"time"

	"github.com/google/uuid"
)

// Precedent represents a previously decided case used as reference
type Precedent struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	IssuingBody       string    `json:"issuing_body"`
	DecisionDate      time.Time `json:"decision_date"`
	CaseType          string    `json:"case_type"`
	SummarizedFacts   string    `json:"summarized_facts"`
	Outcome           string    `json:"outcome"`
	ApproximateAmount float64   `json:"approximate_amount"`
	AppliedPrinciples string    `json:"applied_principles"`
}

// LegalArticle represents an article of a code that decisions may cite
type LegalArticle struct {
	ID            uuid.UUID `json:"id"`
	ArticleNumber string    `json:"article_number"`
	Code          string    `json:"code"` // "CCyC", "CPCC"
	Title         string    `json:"title"`
	Text          string    `json:"text"`
}

// ClassificationCriterion is a stored description of a classification factor
type ClassificationCriterion struct {
	Factor      string `json:"factor"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	MinimumTier int    `json:"minimum_tier"`
}
