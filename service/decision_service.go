package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"justicia-backend/engine"
	"justicia-backend/models"
	"justicia-backend/storage"

	"github.com/google/uuid"
)

// DecisionService drafts, archives and signs off case decisions
type DecisionService struct {
	cases     CaseStore
	decisions DecisionStore
	users     UserStore
	audit     AuditStore
	generator *engine.Generator
	storage   storage.Storage
	logger    *slog.Logger
	now       func() time.Time
}

// DecisionServiceOption is a functional option for DecisionService
type DecisionServiceOption func(*DecisionService)

// WithDecisionCaseStore sets the case store
func WithDecisionCaseStore(store CaseStore) DecisionServiceOption {
	return func(s *DecisionService) {
		s.cases = store
	}
}

// WithDecisionStore sets the decision store
func WithDecisionStore(store DecisionStore) DecisionServiceOption {
	return func(s *DecisionService) {
		s.decisions = store
	}
}

// WithApproverStore enables the approver role check
func WithApproverStore(store UserStore) DecisionServiceOption {
	return func(s *DecisionService) {
		s.users = store
	}
}

// WithDecisionAuditStore sets the audit trail
func WithDecisionAuditStore(store AuditStore) DecisionServiceOption {
	return func(s *DecisionService) {
		s.audit = store
	}
}

// WithGenerator sets the decision generator
func WithGenerator(g *engine.Generator) DecisionServiceOption {
	return func(s *DecisionService) {
		s.generator = g
	}
}

// WithDocumentStorage enables archiving of rendered resolutions
func WithDocumentStorage(st storage.Storage) DecisionServiceOption {
	return func(s *DecisionService) {
		s.storage = st
	}
}

// WithDecisionLogger sets the logger
func WithDecisionLogger(logger *slog.Logger) DecisionServiceOption {
	return func(s *DecisionService) {
		s.logger = logger
	}
}

// WithDecisionClock overrides the clock used for approvals
func WithDecisionClock(now func() time.Time) DecisionServiceOption {
	return func(s *DecisionService) {
		s.now = now
	}
}

// NewDecisionService creates a new decision service
func NewDecisionService(opts ...DecisionServiceOption) *DecisionService {
	s := &DecisionService{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DecideCaseRequest represents a request to draft a decision for a case
type DecideCaseRequest struct {
	CaseID uuid.UUID
}

// DecideCaseResult represents the drafted decision and the case's status after it
type DecideCaseResult struct {
	Decision *models.Decision
	Status   models.CaseStatus
}

// DecideCase drafts a decision for the stored tier of a case, persists it,
// archives the rendered resolution and moves the case forward. Tier 1 cases
// are resolved outright; the rest wait for review.
func (s *DecisionService) DecideCase(ctx context.Context, req DecideCaseRequest) (_ *DecideCaseResult, err error) {
	ctx, span := startSpan(ctx, "DecisionService.DecideCase", attribute.String("case.id", req.CaseID.String()))
	defer func() { endSpan(span, err) }()

	if s.cases == nil || s.decisions == nil {
		return nil, notConfigured("case and decision stores")
	}
	if s.generator == nil {
		return nil, notConfigured("decision generator")
	}

	cs, err := s.cases.GetByID(ctx, req.CaseID)
	if err != nil {
		return nil, notFound(err, ErrCaseNotFound)
	}

	decision, err := s.generator.Decide(ctx, *cs, cs.Tier)
	if err != nil {
		return nil, err
	}
	decision.CaseID = cs.ID

	if err := s.decisions.Create(ctx, decision); err != nil {
		return nil, fmt.Errorf("failed to save decision: %w", err)
	}

	s.archive(ctx, cs, decision)

	status := models.CaseStatusUnderReview
	if cs.Tier == 1 {
		status = models.CaseStatusResolved
	}
	// The decision is saved; a failed status write leaves the stored status as is.
	if err := s.cases.UpdateStatus(ctx, cs.ID, status); err != nil {
		s.logger.WarnContext(ctx, "failed to update case status",
			"case_id", cs.ID,
			"decision_id", decision.ID,
			"status", status,
			"error", err,
		)
		status = cs.Status
	}

	span.SetAttributes(
		attribute.Int("case.tier", cs.Tier),
		attribute.String("decision.kind", string(decision.Kind)),
		attribute.String("decision.outcome", string(decision.Outcome)),
	)
	addCount(ctx, "justicia.decisions.generated", attribute.String("kind", string(decision.Kind)))
	s.logger.InfoContext(ctx, "decision generated",
		"case_id", cs.ID,
		"decision_id", decision.ID,
		"tier", cs.Tier,
		"kind", decision.Kind,
		"outcome", decision.Outcome,
	)

	recordAudit(ctx, s.audit, s.logger, &models.AuditEvent{
		CaseID:      cs.ID,
		DecisionID:  &decision.ID,
		EventType:   models.AuditDecisionGenerated,
		Description: fmt.Sprintf("%s decision drafted with outcome %s", decision.Kind, decision.Outcome),
	})

	return &DecideCaseResult{Decision: decision, Status: status}, nil
}

// archive stores the rendered resolution. The decision is already saved, so
// archive failures only leave the document path unset.
func (s *DecisionService) archive(ctx context.Context, cs *models.Case, d *models.Decision) {
	if s.storage == nil {
		return
	}

	filename := cs.CaseNumber + ".txt"
	path, err := s.storage.Put(ctx, storage.KindResolutions, d.ID, filename, strings.NewReader(d.Justification))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to archive resolution", "decision_id", d.ID, "error", err)
		return
	}
	if err := s.decisions.SetDocumentPath(ctx, d.ID, path); err != nil {
		s.logger.WarnContext(ctx, "failed to record resolution path", "decision_id", d.ID, "error", err)
		return
	}
	d.DocumentPath = &path
}

// ApproveDecisionRequest represents an official's sign-off
type ApproveDecisionRequest struct {
	DecisionID   uuid.UUID
	OfficialID   uuid.UUID
	Observations string
}

// ApproveDecisionResult represents the approved decision
type ApproveDecisionResult struct {
	Decision *models.Decision
}

// ApproveDecision records the sign-off and resolves the case in one step
func (s *DecisionService) ApproveDecision(ctx context.Context, req ApproveDecisionRequest) (_ *ApproveDecisionResult, err error) {
	ctx, span := startSpan(ctx, "DecisionService.ApproveDecision", attribute.String("decision.id", req.DecisionID.String()))
	defer func() { endSpan(span, err) }()

	if s.decisions == nil {
		return nil, notConfigured("decision store")
	}
	if req.OfficialID == uuid.Nil {
		return nil, &engine.FieldError{Field: "official_id"}
	}
	if s.users != nil {
		user, err := s.users.GetByID(ctx, req.OfficialID)
		if err != nil {
			return nil, notFound(err, ErrUserNotFound)
		}
		if user.Role != models.RoleOfficial && user.Role != models.RoleJudge {
			return nil, fmt.Errorf("%w: %s has role %s", ErrNotAnApprover, user.Email, user.Role)
		}
	}

	decision, err := s.decisions.Approve(ctx, models.DecisionApproval{
		DecisionID:   req.DecisionID,
		OfficialID:   req.OfficialID,
		Observations: req.Observations,
		ApprovedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, notFound(err, ErrDecisionNotFound)
	}

	s.logger.InfoContext(ctx, "decision approved",
		"decision_id", decision.ID,
		"case_id", decision.CaseID,
		"official_id", req.OfficialID,
	)

	recordAudit(ctx, s.audit, s.logger, &models.AuditEvent{
		CaseID:      decision.CaseID,
		DecisionID:  &decision.ID,
		EventType:   models.AuditDecisionApproved,
		Description: "Decision approved; case resolved",
		UserID:      &req.OfficialID,
	})

	return &ApproveDecisionResult{Decision: decision}, nil
}

// ListDecisionsRequest represents a request to list the decisions of a case
type ListDecisionsRequest struct {
	CaseID uuid.UUID
}

// ListDecisionsResult represents the decisions of a case, newest first
type ListDecisionsResult struct {
	Decisions []*models.Decision
}

// ListDecisions lists every decision drafted for a case
func (s *DecisionService) ListDecisions(ctx context.Context, req ListDecisionsRequest) (_ *ListDecisionsResult, err error) {
	ctx, span := startSpan(ctx, "DecisionService.ListDecisions", attribute.String("case.id", req.CaseID.String()))
	defer func() { endSpan(span, err) }()

	if s.cases == nil || s.decisions == nil {
		return nil, notConfigured("case and decision stores")
	}
	if _, err := s.cases.GetByID(ctx, req.CaseID); err != nil {
		return nil, notFound(err, ErrCaseNotFound)
	}

	decisions, err := s.decisions.ListByCaseID(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	return &ListDecisionsResult{Decisions: decisions}, nil
}

// DecisionDocument is an archived resolution ready to stream. Callers must
// close Body.
type DecisionDocument struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// GetDecisionDocument opens the archived resolution of a decision
func (s *DecisionService) GetDecisionDocument(ctx context.Context, decisionID uuid.UUID) (_ *DecisionDocument, err error) {
	ctx, span := startSpan(ctx, "DecisionService.GetDecisionDocument", attribute.String("decision.id", decisionID.String()))
	defer func() { endSpan(span, err) }()

	if s.decisions == nil {
		return nil, notConfigured("decision store")
	}
	if s.storage == nil {
		return nil, ErrDocumentNotFound
	}

	decision, err := s.decisions.GetByID(ctx, decisionID)
	if err != nil {
		return nil, notFound(err, ErrDecisionNotFound)
	}
	if decision.DocumentPath == nil {
		return nil, ErrDocumentNotFound
	}

	body, err := s.storage.Open(ctx, *decision.DocumentPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	filename := decision.ID.String() + ".txt"
	if cs, err := s.caseOf(ctx, decision); err == nil {
		filename = cs.CaseNumber + ".txt"
	}
	return &DecisionDocument{
		Filename:    filename,
		ContentType: storage.ContentType(filename),
		Body:        body,
	}, nil
}

func (s *DecisionService) caseOf(ctx context.Context, d *models.Decision) (*models.Case, error) {
	if s.cases == nil {
		return nil, notConfigured("case store")
	}
	return s.cases.GetByID(ctx, d.CaseID)
}
