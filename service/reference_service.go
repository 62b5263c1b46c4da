package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"justicia-backend/engine"
	"justicia-backend/models"
)

// ReferenceService exposes the legal reference data decisions draw on
type ReferenceService struct {
	store ReferenceStore
	rules *engine.RuleSet
}

// ReferenceServiceOption is a functional option for ReferenceService
type ReferenceServiceOption func(*ReferenceService)

// WithReferenceStore sets the reference data store
func WithReferenceStore(store ReferenceStore) ReferenceServiceOption {
	return func(s *ReferenceService) {
		s.store = store
	}
}

// WithActiveRules exposes the rule table the classifier runs with
func WithActiveRules(rs *engine.RuleSet) ReferenceServiceOption {
	return func(s *ReferenceService) {
		s.rules = rs
	}
}

// NewReferenceService creates a new reference service
func NewReferenceService(opts ...ReferenceServiceOption) *ReferenceService {
	s := &ReferenceService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.rules == nil {
		s.rules = engine.DefaultRuleSet()
	}
	return s
}

// ListArticles lists the legal articles decisions may cite
func (s *ReferenceService) ListArticles(ctx context.Context) (_ []models.LegalArticle, err error) {
	ctx, span := startSpan(ctx, "ReferenceService.ListArticles")
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, notConfigured("reference store")
	}
	return s.store.ListArticles(ctx)
}

// ListPrecedents lists precedents, most recent first. An empty case type
// lists all of them.
func (s *ReferenceService) ListPrecedents(ctx context.Context, caseType string) (_ []models.Precedent, err error) {
	caseType = strings.TrimSpace(caseType)
	ctx, span := startSpan(ctx, "ReferenceService.ListPrecedents", attribute.String("case.type", caseType))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, notConfigured("reference store")
	}
	return s.store.ListPrecedents(ctx, caseType)
}

// ListCriteria lists the stored descriptions of the classification factors
func (s *ReferenceService) ListCriteria(ctx context.Context) (_ []models.ClassificationCriterion, err error) {
	ctx, span := startSpan(ctx, "ReferenceService.ListCriteria")
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, notConfigured("reference store")
	}
	return s.store.ListCriteria(ctx)
}

// Rules returns the rule table in effect
func (s *ReferenceService) Rules() *engine.RuleSet {
	return s.rules
}
