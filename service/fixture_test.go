package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"justicia-backend/engine"
	"justicia-backend/models"
	"justicia-backend/repository/memstore"
	"justicia-backend/service"
	"justicia-backend/storage"
)

var fixedNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store     *memstore.Store
	storage   storage.Storage
	logs      *bytes.Buffer
	claimant  models.User
	official  models.User
	cases     *service.CaseService
	decisions *service.DecisionService
	evidence  *service.EvidenceService
}

type fixtureOption struct {
	lookup engine.PrecedentLookup
	audit  service.AuditStore
}

func newFixture(t *testing.T, opts ...func(*fixtureOption)) *fixture {
	t.Helper()

	store := memstore.NewSeeded(memstore.WithClock(func() time.Time { return fixedNow }))
	docs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	o := fixtureOption{lookup: store.References(), audit: store.Audit()}
	for _, opt := range opts {
		opt(&o)
	}

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := &fixture{
		store:    store,
		storage:  docs,
		logs:     logs,
		claimant: store.AddUser(models.User{Email: "ana@example.com", Name: "Ana Pereyra", Role: models.RoleClaimant}),
		official: store.AddUser(models.User{Email: "clerk@example.com", Name: "Court Clerk", Role: models.RoleOfficial}),
	}

	f.cases = service.NewCaseService(
		service.WithCaseStore(store.Cases()),
		service.WithCaseDecisionStore(store.Decisions()),
		service.WithUserStore(store.Users()),
		service.WithCaseAuditStore(o.audit),
		service.WithCaseLogger(logger),
		service.WithCaseClock(func() time.Time { return fixedNow }),
	)
	f.decisions = service.NewDecisionService(
		service.WithDecisionCaseStore(store.Cases()),
		service.WithDecisionStore(store.Decisions()),
		service.WithApproverStore(store.Users()),
		service.WithDecisionAuditStore(o.audit),
		service.WithGenerator(engine.NewGenerator(o.lookup)),
		service.WithDocumentStorage(docs),
		service.WithDecisionLogger(logger),
		service.WithDecisionClock(func() time.Time { return fixedNow }),
	)
	f.evidence = service.NewEvidenceService(
		service.WithFileStore(store.Files()),
		service.WithEvidenceCaseStore(store.Cases()),
		service.WithEvidenceAuditStore(o.audit),
		service.WithEvidenceStorage(docs),
		service.WithMaxEvidenceSize(1024),
		service.WithEvidenceLogger(logger),
	)
	return f
}

func withLookup(l engine.PrecedentLookup) func(*fixtureOption) {
	return func(o *fixtureOption) { o.lookup = l }
}

func withAudit(a service.AuditStore) func(*fixtureOption) {
	return func(o *fixtureOption) { o.audit = a }
}

// collectionCase scores 8: low amount, documentary evidence and executory title.
func (f *fixture) collectionCase() service.CreateCaseRequest {
	return service.CreateCaseRequest{
		ClaimantID:     f.claimant.ID,
		CaseType:       models.CaseTypeMoneyCollection,
		RespondentName: "Comercial Andina SRL",
		ClaimedAmount:  200000,
		Facts:          "The respondent did not pay the promissory note at maturity.",
		Evidence:       "Original pagaré signed by the respondent",
		HasResponse:    true,
	}
}

// damagesCase scores -2 on the disputed facts and lands in tier 3.
func (f *fixture) damagesCase() service.CreateCaseRequest {
	return service.CreateCaseRequest{
		ClaimantID:     f.claimant.ID,
		CaseType:       models.CaseTypeDamages,
		RespondentName: "Transportes del Sur SA",
		ClaimedAmount:  500000,
		Facts:          "Rear-end collision; the parties give disputed versions of the speed.",
		Evidence:       "Police report",
		HasResponse:    true,
	}
}

func (f *fixture) create(t *testing.T, req service.CreateCaseRequest) *models.Case {
	t.Helper()
	res, err := f.cases.CreateCase(context.Background(), req)
	require.NoError(t, err)
	return res.Case
}

type failingAudit struct{}

func (failingAudit) Create(context.Context, *models.AuditEvent) error {
	return errors.New("audit table unavailable")
}

func (failingAudit) ListByCaseID(context.Context, uuid.UUID) ([]*models.AuditEvent, error) {
	return nil, nil
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}
