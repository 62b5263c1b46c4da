package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"justicia-backend/engine"
	"justicia-backend/models"
	"justicia-backend/service"
	"justicia-backend/storage"
)

func TestDecideCase_Tier1ResolvesAndArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.create(t, f.collectionCase())

	res, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)

	d := res.Decision
	assert.Equal(t, models.CaseStatusResolved, res.Status)
	assert.Equal(t, cs.ID, d.CaseID)
	assert.Equal(t, models.DecisionKindAutomatic, d.Kind)
	assert.Equal(t, models.OutcomeGrants, d.Outcome)
	require.NotNil(t, d.AwardedAmount)
	assert.InDelta(t, 230000.0, *d.AwardedAmount, 0.001)
	require.NotNil(t, d.DocumentPath)

	stored, err := f.store.Cases().GetByID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusResolved, stored.Status)
	require.NotNil(t, stored.ResolvedAt)

	saved, err := f.store.Decisions().GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.DocumentPath, saved.DocumentPath)

	doc, err := f.decisions.GetDecisionDocument(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "JUS-2026-00001.txt", doc.Filename)
	assert.Equal(t, "text/plain", doc.ContentType)
	body := readAll(t, doc.Body)
	assert.Contains(t, body, "$200,000.00 as principal")
	assert.Equal(t, d.Justification, body)

	events, err := f.store.Audit().ListByCaseID(ctx, cs.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.AuditDecisionGenerated, events[1].EventType)
	assert.Equal(t, &d.ID, events[1].DecisionID)
}

func TestDecideCase_Tier2UsesMostRecentPrecedent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.damagesCase()
	req.ClaimedAmount = 250000
	req.Facts = "The respondent's dog damaged the claimant's fence."
	cs := f.create(t, req)
	require.Equal(t, 2, cs.Tier)

	res, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)

	d := res.Decision
	assert.Equal(t, models.CaseStatusUnderReview, res.Status)
	assert.Equal(t, models.DecisionKindAssisted, d.Kind)
	assert.Equal(t, models.OutcomeGrantsPartial, d.Outcome)
	require.NotNil(t, d.AwardedAmount)
	assert.InDelta(t, 225000.0, *d.AwardedAmount, 0.001)
	assert.Equal(t, []string{"Rodríguez v. Seguros del Plata"}, d.ConsideredPrecedents)
}

func TestDecideCase_Tier3And4AwaitReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	difficult := f.create(t, f.damagesCase())
	res, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: difficult.ID})
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusUnderReview, res.Status)
	assert.Equal(t, models.OutcomeRequiresDeliberation, res.Decision.Outcome)
	require.Len(t, res.Decision.Perspectives, 3)
	assert.Nil(t, res.Decision.AwardedAmount)

	req := f.damagesCase()
	req.RaisesConstitutionalIssue = true
	constitutional := f.create(t, req)
	require.Equal(t, 4, constitutional.Tier)

	res, err = f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: constitutional.ID})
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusUnderReview, res.Status)
	assert.Equal(t, models.DecisionKindDeliberative, res.Decision.Kind)
	assert.Equal(t, models.OutcomeRequiresDeliberationExpanded, res.Decision.Outcome)
	assert.Contains(t, res.Decision.Justification, req.Facts)
}

func TestDecideCase_LookupFailureLeavesCaseUntouched(t *testing.T) {
	broken := engine.PrecedentLookupFunc(func(context.Context, string, int) ([]models.Precedent, error) {
		return nil, errors.New("connection refused")
	})
	f := newFixture(t, withLookup(broken))
	ctx := context.Background()

	req := f.damagesCase()
	req.ClaimedAmount = 250000
	req.Facts = "The respondent's dog damaged the claimant's fence."
	cs := f.create(t, req)

	_, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.ErrorIs(t, err, engine.ErrLookupFailure)
	assert.Contains(t, err.Error(), "connection refused")

	decisions, err := f.store.Decisions().ListByCaseID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Empty(t, decisions)

	stored, err := f.store.Cases().GetByID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusClassified, stored.Status)
}

func TestDecideCase_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.decisions.DecideCase(context.Background(), service.DecideCaseRequest{CaseID: uuid.New()})
	assert.ErrorIs(t, err, service.ErrCaseNotFound)

	_, err = service.NewDecisionService(
		service.WithDecisionCaseStore(f.store.Cases()),
		service.WithDecisionStore(f.store.Decisions()),
	).DecideCase(context.Background(), service.DecideCaseRequest{CaseID: uuid.New()})
	assert.ErrorIs(t, err, service.ErrNotConfigured)
}

type brokenStorage struct{}

func (brokenStorage) Put(context.Context, storage.DocumentKind, uuid.UUID, string, io.Reader) (string, error) {
	return "", errors.New("bucket unreachable")
}

func (brokenStorage) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (brokenStorage) Delete(context.Context, string) error { return nil }

func TestDecideCase_ArchiveFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.create(t, f.collectionCase())

	logs := &bytes.Buffer{}
	svc := service.NewDecisionService(
		service.WithDecisionCaseStore(f.store.Cases()),
		service.WithDecisionStore(f.store.Decisions()),
		service.WithGenerator(engine.NewGenerator(f.store.References())),
		service.WithDocumentStorage(brokenStorage{}),
		service.WithDecisionLogger(slog.New(slog.NewTextHandler(logs, nil))),
	)

	res, err := svc.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)
	assert.Nil(t, res.Decision.DocumentPath)
	assert.Contains(t, logs.String(), "failed to archive resolution")

	_, err = svc.GetDecisionDocument(ctx, res.Decision.ID)
	assert.ErrorIs(t, err, service.ErrDocumentNotFound)
}

type stuckStatusCases struct {
	service.CaseStore
}

func (stuckStatusCases) UpdateStatus(context.Context, uuid.UUID, models.CaseStatus) error {
	return errors.New("connection reset")
}

func TestDecideCase_StatusFailureKeepsDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.create(t, f.collectionCase())

	logs := &bytes.Buffer{}
	svc := service.NewDecisionService(
		service.WithDecisionCaseStore(stuckStatusCases{f.store.Cases()}),
		service.WithDecisionStore(f.store.Decisions()),
		service.WithGenerator(engine.NewGenerator(f.store.References())),
		service.WithDecisionLogger(slog.New(slog.NewTextHandler(logs, nil))),
	)

	res, err := svc.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusClassified, res.Status)
	assert.Contains(t, logs.String(), "failed to update case status")

	saved, err := f.store.Decisions().GetLatestByCaseID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Decision.ID, saved.ID)

	stored, err := f.store.Cases().GetByID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusClassified, stored.Status)
}

func TestApproveDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.create(t, f.damagesCase())
	decided, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)

	res, err := f.decisions.ApproveDecision(ctx, service.ApproveDecisionRequest{
		DecisionID:   decided.Decision.ID,
		OfficialID:   f.official.ID,
		Observations: "Balanced perspective adopted",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Decision.ApprovedBy)
	assert.Equal(t, f.official.ID, *res.Decision.ApprovedBy)
	require.NotNil(t, res.Decision.ApprovalNotes)
	assert.Equal(t, "Balanced perspective adopted", *res.Decision.ApprovalNotes)
	require.NotNil(t, res.Decision.ApprovedAt)
	assert.True(t, res.Decision.ApprovedAt.Equal(fixedNow))

	stored, err := f.store.Cases().GetByID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusResolved, stored.Status)

	events, err := f.store.Audit().ListByCaseID(ctx, cs.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.AuditDecisionApproved, events[2].EventType)
	assert.Equal(t, &f.official.ID, events[2].UserID)
}

func TestApproveDecision_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.create(t, f.damagesCase())
	decided, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)

	_, err = f.decisions.ApproveDecision(ctx, service.ApproveDecisionRequest{DecisionID: decided.Decision.ID})
	assert.ErrorIs(t, err, engine.ErrMissingField)

	_, err = f.decisions.ApproveDecision(ctx, service.ApproveDecisionRequest{
		DecisionID: decided.Decision.ID,
		OfficialID: f.claimant.ID,
	})
	assert.ErrorIs(t, err, service.ErrNotAnApprover)

	_, err = f.decisions.ApproveDecision(ctx, service.ApproveDecisionRequest{
		DecisionID: decided.Decision.ID,
		OfficialID: uuid.New(),
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = f.decisions.ApproveDecision(ctx, service.ApproveDecisionRequest{
		DecisionID: uuid.New(),
		OfficialID: f.official.ID,
	})
	assert.ErrorIs(t, err, service.ErrDecisionNotFound)

	stored, err := f.store.Cases().GetByID(ctx, cs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusUnderReview, stored.Status)
}

func TestListDecisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.create(t, f.damagesCase())

	first, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)
	second, err := f.decisions.DecideCase(ctx, service.DecideCaseRequest{CaseID: cs.ID})
	require.NoError(t, err)

	res, err := f.decisions.ListDecisions(ctx, service.ListDecisionsRequest{CaseID: cs.ID})
	require.NoError(t, err)
	require.Len(t, res.Decisions, 2)
	assert.Equal(t, second.Decision.ID, res.Decisions[0].ID)
	assert.Equal(t, first.Decision.ID, res.Decisions[1].ID)

	_, err = f.decisions.ListDecisions(ctx, service.ListDecisionsRequest{CaseID: uuid.New()})
	assert.ErrorIs(t, err, service.ErrCaseNotFound)
}

func TestGetDecisionDocument_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.decisions.GetDecisionDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrDecisionNotFound)

	_, err = service.NewDecisionService(service.WithDecisionStore(f.store.Decisions())).
		GetDecisionDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrDocumentNotFound)
}
