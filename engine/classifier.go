// Package engine holds the case triage rules and the tier-specific decision
// drafting strategies. Nothing in it touches storage except through the
// PrecedentLookup a Generator is built with.
//
// The gopter property suites run with: go test -tags property ./engine/...
package engine

import (
	"math"
	"strings"

	"justicia-backend/models"
)

// Classifier scores a case against a rule table and assigns a tier.
// It holds no per-call state and is safe for concurrent use.
type Classifier struct {
	rules *RuleSet
}

// ClassifierOption is a functional option for Classifier
type ClassifierOption func(*Classifier)

// WithRuleSet replaces the built-in rule table
func WithRuleSet(rs *RuleSet) ClassifierOption {
	return func(c *Classifier) {
		c.rules = rs
	}
}

// NewClassifier creates a classifier using the built-in rule table unless
// another one is supplied.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules == nil {
		c.rules = DefaultRuleSet()
	}
	return c
}

// RuleSet returns the table the classifier evaluates.
func (c *Classifier) RuleSet() *RuleSet {
	return c.rules
}

// Classify evaluates every rule in order and maps the accumulated score to
// a tier. The floor tier raised by rules can only move the tier up; the
// confidence always comes from the score band, even when the floor wins.
func (c *Classifier) Classify(cs models.Case) (models.ClassificationResult, error) {
	if err := validateAmount(cs.ClaimedAmount); err != nil {
		return models.ClassificationResult{}, err
	}

	score := 0
	floor := 1
	factors := make([]string, 0)

	for _, rule := range c.rules.Rules {
		if !rule.Matches(cs) {
			continue
		}
		score += rule.Score
		if rule.Floor != nil {
			switch rule.Floor.Mode {
			case FloorOverride:
				floor = rule.Floor.Tier
			default:
				floor = max(floor, rule.Floor.Tier)
			}
		}
		factors = append(factors, rule.Factor)
	}

	bandTier, confidence := c.rules.band(score)
	tier := max(bandTier, floor)

	justification, err := renderClassification(tier, score, factors)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	return models.ClassificationResult{
		Tier:          tier,
		Confidence:    confidence,
		Justification: justification,
		Score:         score,
		Factors:       factors,
	}, nil
}

// ValidateCase checks the attributes the decision generator cannot do
// without.
func ValidateCase(cs models.Case) error {
	if strings.TrimSpace(cs.CaseType) == "" {
		return &FieldError{Field: "case_type"}
	}
	return validateAmount(cs.ClaimedAmount)
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return &FieldError{Field: "claimed_amount", Reason: "not a finite number"}
	}
	if amount < 0 {
		return &FieldError{Field: "claimed_amount", Reason: "must not be negative"}
	}
	return nil
}
