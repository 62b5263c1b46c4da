package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"justicia-backend/engine"
	"justicia-backend/models"
	"justicia-backend/repository"

	"github.com/google/uuid"
)

// DefaultCaseNumberPrefix is used when no prefix option is given.
const DefaultCaseNumberPrefix = "JUS"

// DefaultListLimit caps case listings that do not ask for a limit.
const DefaultListLimit = 50

// CaseService files, classifies and reports on cases
type CaseService struct {
	cases      CaseStore
	decisions  DecisionStore
	users      UserStore
	audit      AuditStore
	classifier *engine.Classifier
	prefix     string
	logger     *slog.Logger
	now        func() time.Time
}

// CaseServiceOption is a functional option for CaseService
type CaseServiceOption func(*CaseService)

// WithCaseStore sets the case store
func WithCaseStore(store CaseStore) CaseServiceOption {
	return func(s *CaseService) {
		s.cases = store
	}
}

// WithCaseDecisionStore sets the store the current decision is read from
func WithCaseDecisionStore(store DecisionStore) CaseServiceOption {
	return func(s *CaseService) {
		s.decisions = store
	}
}

// WithUserStore enables the claimant existence check
func WithUserStore(store UserStore) CaseServiceOption {
	return func(s *CaseService) {
		s.users = store
	}
}

// WithCaseAuditStore sets the audit trail
func WithCaseAuditStore(store AuditStore) CaseServiceOption {
	return func(s *CaseService) {
		s.audit = store
	}
}

// WithClassifier replaces the default classifier
func WithClassifier(c *engine.Classifier) CaseServiceOption {
	return func(s *CaseService) {
		s.classifier = c
	}
}

// WithCaseNumberPrefix sets the prefix of generated case numbers
func WithCaseNumberPrefix(prefix string) CaseServiceOption {
	return func(s *CaseService) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithCaseLogger sets the logger
func WithCaseLogger(logger *slog.Logger) CaseServiceOption {
	return func(s *CaseService) {
		s.logger = logger
	}
}

// WithCaseClock overrides the clock used for case numbers
func WithCaseClock(now func() time.Time) CaseServiceOption {
	return func(s *CaseService) {
		s.now = now
	}
}

// NewCaseService creates a new case service
func NewCaseService(opts ...CaseServiceOption) *CaseService {
	s := &CaseService{
		prefix: DefaultCaseNumberPrefix,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = engine.NewClassifier()
	}
	return s
}

// CreateCaseRequest represents a request to file a case
type CreateCaseRequest struct {
	ClaimantID                uuid.UUID
	CaseType                  string
	RespondentName            string
	ClaimedAmount             float64
	Facts                     string
	Evidence                  string
	HasResponse               bool
	RaisesConstitutionalIssue bool
}

// CreateCaseResult represents the result of filing a case
type CreateCaseResult struct {
	Case           *models.Case
	Classification models.ClassificationResult
}

// CreateCase validates, classifies and stores a new case
func (s *CaseService) CreateCase(ctx context.Context, req CreateCaseRequest) (_ *CreateCaseResult, err error) {
	ctx, span := startSpan(ctx, "CaseService.CreateCase", attribute.String("case.type", req.CaseType))
	defer func() { endSpan(span, err) }()

	if s.cases == nil {
		return nil, notConfigured("case store")
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	if s.users != nil {
		if _, err := s.users.GetByID(ctx, req.ClaimantID); err != nil {
			return nil, notFound(err, ErrUserNotFound)
		}
	}

	cs := &models.Case{
		CaseType:                  strings.TrimSpace(req.CaseType),
		ClaimantID:                req.ClaimantID,
		RespondentName:            strings.TrimSpace(req.RespondentName),
		ClaimedAmount:             req.ClaimedAmount,
		Facts:                     req.Facts,
		Evidence:                  req.Evidence,
		HasResponse:               req.HasResponse,
		RaisesConstitutionalIssue: req.RaisesConstitutionalIssue,
		Status:                    models.CaseStatusClassified,
	}

	result, err := s.classifier.Classify(*cs)
	if err != nil {
		return nil, err
	}
	result.Apply(cs)

	seq, err := s.cases.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate case number: %w", err)
	}
	cs.CaseNumber = FormatCaseNumber(s.prefix, s.now().Year(), seq)

	if err := s.cases.Create(ctx, cs); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	span.SetAttributes(attribute.Int("case.tier", cs.Tier), attribute.String("case.number", cs.CaseNumber))
	addCount(ctx, "justicia.cases.classified", attribute.Int("tier", cs.Tier))
	s.logger.InfoContext(ctx, "case classified",
		"case_id", cs.ID,
		"case_number", cs.CaseNumber,
		"tier", cs.Tier,
		"score", result.Score,
	)

	s.record(ctx, &models.AuditEvent{
		CaseID:      cs.ID,
		EventType:   models.AuditClassification,
		Description: fmt.Sprintf("Case classified as tier %d (confidence %.2f)", cs.Tier, cs.Confidence),
		UserID:      &cs.ClaimantID,
	})

	return &CreateCaseResult{Case: cs, Classification: result}, nil
}

// FormatCaseNumber renders a case number such as JUS-2026-00042.
func FormatCaseNumber(prefix string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, seq)
}

func validateCreate(req CreateCaseRequest) error {
	switch {
	case strings.TrimSpace(req.CaseType) == "":
		return &engine.FieldError{Field: "case_type"}
	case req.ClaimantID == uuid.Nil:
		return &engine.FieldError{Field: "claimant_id"}
	case strings.TrimSpace(req.RespondentName) == "":
		return &engine.FieldError{Field: "respondent_name"}
	}
	return nil
}

// UpdateCaseRequest represents a partial update. Nil fields are left unchanged.
type UpdateCaseRequest struct {
	ID                        uuid.UUID
	CaseType                  *string
	RespondentName            *string
	ClaimedAmount             *float64
	Facts                     *string
	Evidence                  *string
	HasResponse               *bool
	RaisesConstitutionalIssue *bool
}

// UpdateCaseResult represents the result of updating a case
type UpdateCaseResult struct {
	Case           *models.Case
	Classification models.ClassificationResult
	PreviousTier   int
}

// UpdateCase applies the changes and classifies the case again, overwriting
// the previous classification.
func (s *CaseService) UpdateCase(ctx context.Context, req UpdateCaseRequest) (_ *UpdateCaseResult, err error) {
	ctx, span := startSpan(ctx, "CaseService.UpdateCase", attribute.String("case.id", req.ID.String()))
	defer func() { endSpan(span, err) }()

	if s.cases == nil {
		return nil, notConfigured("case store")
	}

	cs, err := s.cases.GetByID(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, ErrCaseNotFound)
	}
	previous := cs.Tier

	if req.CaseType != nil {
		cs.CaseType = strings.TrimSpace(*req.CaseType)
	}
	if req.RespondentName != nil {
		cs.RespondentName = strings.TrimSpace(*req.RespondentName)
	}
	if req.ClaimedAmount != nil {
		cs.ClaimedAmount = *req.ClaimedAmount
	}
	if req.Facts != nil {
		cs.Facts = *req.Facts
	}
	if req.Evidence != nil {
		cs.Evidence = *req.Evidence
	}
	if req.HasResponse != nil {
		cs.HasResponse = *req.HasResponse
	}
	if req.RaisesConstitutionalIssue != nil {
		cs.RaisesConstitutionalIssue = *req.RaisesConstitutionalIssue
	}

	if err := validateCreate(CreateCaseRequest{
		ClaimantID:     cs.ClaimantID,
		CaseType:       cs.CaseType,
		RespondentName: cs.RespondentName,
	}); err != nil {
		return nil, err
	}

	result, err := s.classifier.Classify(*cs)
	if err != nil {
		return nil, err
	}
	result.Apply(cs)

	if err := s.cases.Update(ctx, cs); err != nil {
		return nil, notFound(err, ErrCaseNotFound)
	}

	addCount(ctx, "justicia.cases.classified", attribute.Int("tier", cs.Tier))
	s.logger.InfoContext(ctx, "case reclassified",
		"case_id", cs.ID,
		"previous_tier", previous,
		"tier", cs.Tier,
	)

	s.record(ctx, &models.AuditEvent{
		CaseID:      cs.ID,
		EventType:   models.AuditReclassification,
		Description: fmt.Sprintf("Case reclassified from tier %d to tier %d (confidence %.2f)", previous, cs.Tier, cs.Confidence),
	})

	return &UpdateCaseResult{Case: cs, Classification: result, PreviousTier: previous}, nil
}

// GetCaseRequest represents a request to get a case
type GetCaseRequest struct {
	ID uuid.UUID
}

// GetCaseResult carries a case with its current decision, if any, and its audit trail
type GetCaseResult struct {
	Case       *models.Case
	Decision   *models.Decision
	AuditTrail []*models.AuditEvent
}

// GetCase retrieves a case with its most recent decision
func (s *CaseService) GetCase(ctx context.Context, req GetCaseRequest) (_ *GetCaseResult, err error) {
	ctx, span := startSpan(ctx, "CaseService.GetCase", attribute.String("case.id", req.ID.String()))
	defer func() { endSpan(span, err) }()

	if s.cases == nil {
		return nil, notConfigured("case store")
	}

	cs, err := s.cases.GetByID(ctx, req.ID)
	if err != nil {
		return nil, notFound(err, ErrCaseNotFound)
	}

	result := &GetCaseResult{Case: cs, AuditTrail: []*models.AuditEvent{}}
	if s.decisions != nil {
		d, err := s.decisions.GetLatestByCaseID(ctx, cs.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		result.Decision = d
	}
	if s.audit != nil {
		events, err := s.audit.ListByCaseID(ctx, cs.ID)
		if err != nil {
			return nil, err
		}
		result.AuditTrail = events
	}
	return result, nil
}

// ListCasesRequest represents a request to list cases
type ListCasesRequest struct {
	Status *models.CaseStatus
	Tier   *int
	Limit  int
}

// ListCasesResult represents the result of listing cases
type ListCasesResult struct {
	Cases []*models.Case
}

// ListCases lists cases, most recently filed first
func (s *CaseService) ListCases(ctx context.Context, req ListCasesRequest) (_ *ListCasesResult, err error) {
	ctx, span := startSpan(ctx, "CaseService.ListCases")
	defer func() { endSpan(span, err) }()

	if s.cases == nil {
		return nil, notConfigured("case store")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	cases, err := s.cases.List(ctx, models.CaseFilter{Status: req.Status, Tier: req.Tier, Limit: limit})
	if err != nil {
		return nil, err
	}
	return &ListCasesResult{Cases: cases}, nil
}

// GetStatistics counts cases per tier and per status
func (s *CaseService) GetStatistics(ctx context.Context) (_ *models.CaseStatistics, err error) {
	ctx, span := startSpan(ctx, "CaseService.GetStatistics")
	defer func() { endSpan(span, err) }()

	if s.cases == nil {
		return nil, notConfigured("case store")
	}

	var byTier map[int]int
	var byStatus map[models.CaseStatus]int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byTier, err = s.cases.CountByTier(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.cases.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to count cases: %w", err)
	}

	stats := &models.CaseStatistics{ByTier: byTier, ByStatus: byStatus}
	for status, n := range byStatus {
		if status == models.CaseStatusResolved {
			stats.Resolved += n
		} else {
			stats.Pending += n
		}
	}
	return stats, nil
}

// record appends an audit event. The case is already persisted, so a failed
// write is logged rather than returned.
func (s *CaseService) record(ctx context.Context, event *models.AuditEvent) {
	recordAudit(ctx, s.audit, s.logger, event)
}

func recordAudit(ctx context.Context, store AuditStore, logger *slog.Logger, event *models.AuditEvent) {
	if store == nil {
		return
	}
	if err := store.Create(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to record audit event",
			"case_id", event.CaseID,
			"event_type", event.EventType,
			"error", err,
		)
	}
}
