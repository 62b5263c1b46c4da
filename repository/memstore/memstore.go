// Package memstore keeps cases, decisions and reference data in process
// memory. It mirrors the Postgres repositories closely enough for local runs
// without a database and for service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"justicia-backend/models"
	"justicia-backend/repository"

	"github.com/google/uuid"
)

// Store is the shared state behind every repository view.
type Store struct {
	mu sync.RWMutex

	seq        int64
	users      map[uuid.UUID]models.User
	cases      map[uuid.UUID]models.Case
	decisions  map[uuid.UUID]models.Decision
	order      map[uuid.UUID]int
	audit      []models.AuditEvent
	files      map[uuid.UUID]models.EvidenceFile
	articles   []models.LegalArticle
	precedents []models.Precedent
	criteria   []models.ClassificationCriterion

	now func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		users:     make(map[uuid.UUID]models.User),
		cases:     make(map[uuid.UUID]models.Case),
		decisions: make(map[uuid.UUID]models.Decision),
		order:     make(map[uuid.UUID]int),
		files:     make(map[uuid.UUID]models.EvidenceFile),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded creates a store preloaded with the demo fixtures. Demo users are
// stored without password hashes.
func NewSeeded(opts ...Option) *Store {
	s := New(opts...)
	for _, u := range repository.DemoUsers() {
		s.AddUser(models.User{Email: u.Email, Name: u.Name, Role: u.Role})
	}
	for _, a := range repository.DemoArticles() {
		a.ID = uuid.New()
		s.articles = append(s.articles, a)
	}
	for _, p := range repository.DemoPrecedents() {
		s.AddPrecedent(p)
	}
	s.criteria = append(s.criteria, repository.DemoCriteria()...)
	return s
}

// AddUser stores a user and returns it with an ID assigned
func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// AddPrecedent stores a precedent
func (s *Store) AddPrecedent(p models.Precedent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.precedents = append(s.precedents, p)
}

// Users returns the user repository view
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

// Cases returns the case repository view
func (s *Store) Cases() *CaseRepository { return &CaseRepository{s} }

// Decisions returns the decision repository view
func (s *Store) Decisions() *DecisionRepository { return &DecisionRepository{s} }

// Audit returns the audit repository view
func (s *Store) Audit() *AuditRepository { return &AuditRepository{s} }

// Files returns the evidence file repository view
func (s *Store) Files() *FileRepository { return &FileRepository{s} }

// References returns the reference data repository view
func (s *Store) References() *ReferenceRepository { return &ReferenceRepository{s} }

// UserRepository is the in-memory user store
type UserRepository struct{ s *Store }

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// CaseRepository is the in-memory case store
type CaseRepository struct{ s *Store }

// NextSequence returns the next case number sequence value
func (r *CaseRepository) NextSequence(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	return r.s.seq, nil
}

// Create stores a new case
func (r *CaseRepository) Create(_ context.Context, cs *models.Case) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cs.ID = uuid.New()
	cs.FiledAt = r.s.now()
	r.s.cases[cs.ID] = *cs
	return nil
}

func (r *CaseRepository) withClaimant(cs models.Case) *models.Case {
	if u, ok := r.s.users[cs.ClaimantID]; ok {
		cs.ClaimantName = u.Name
	}
	return &cs
}

// GetByID retrieves a case by ID
func (r *CaseRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Case, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cs, ok := r.s.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withClaimant(cs), nil
}

// List retrieves cases, most recently filed first
func (r *CaseRepository) List(_ context.Context, filter models.CaseFilter) ([]*models.Case, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cases := make([]*models.Case, 0)
	for _, cs := range r.s.cases {
		if filter.Status != nil && cs.Status != *filter.Status {
			continue
		}
		if filter.Tier != nil && cs.Tier != *filter.Tier {
			continue
		}
		cases = append(cases, r.withClaimant(cs))
	}
	sort.Slice(cases, func(i, j int) bool {
		if cases[i].FiledAt.Equal(cases[j].FiledAt) {
			return cases[i].CaseNumber > cases[j].CaseNumber
		}
		return cases[i].FiledAt.After(cases[j].FiledAt)
	})
	if filter.Limit > 0 && len(cases) > filter.Limit {
		cases = cases[:filter.Limit]
	}
	return cases, nil
}

// Update rewrites the narrative fields and classification of a case
func (r *CaseRepository) Update(_ context.Context, cs *models.Case) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.cases[cs.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.CaseType = cs.CaseType
	stored.RespondentName = cs.RespondentName
	stored.ClaimedAmount = cs.ClaimedAmount
	stored.Facts = cs.Facts
	stored.Evidence = cs.Evidence
	stored.HasResponse = cs.HasResponse
	stored.RaisesConstitutionalIssue = cs.RaisesConstitutionalIssue
	stored.Tier = cs.Tier
	stored.Confidence = cs.Confidence
	stored.ClassificationJustification = cs.ClassificationJustification
	r.s.cases[cs.ID] = stored
	return nil
}

// UpdateStatus changes the status of a case
func (r *CaseRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.CaseStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.setStatus(id, status, r.s.now())
}

func (s *Store) setStatus(id uuid.UUID, status models.CaseStatus, at time.Time) error {
	cs, ok := s.cases[id]
	if !ok {
		return repository.ErrNotFound
	}
	cs.Status = status
	if status == models.CaseStatusResolved {
		cs.ResolvedAt = &at
	}
	s.cases[id] = cs
	return nil
}

// CountByTier returns the number of cases per tier
func (r *CaseRepository) CountByTier(_ context.Context) (map[int]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[int]int)
	for _, cs := range r.s.cases {
		counts[cs.Tier]++
	}
	return counts, nil
}

// CountByStatus returns the number of cases per status
func (r *CaseRepository) CountByStatus(_ context.Context) (map[models.CaseStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	counts := make(map[models.CaseStatus]int)
	for _, cs := range r.s.cases {
		counts[cs.Status]++
	}
	return counts, nil
}

// DecisionRepository is the in-memory decision store
type DecisionRepository struct{ s *Store }

func copyDecision(d models.Decision) *models.Decision {
	d.AppliedArticles = append([]string{}, d.AppliedArticles...)
	if d.ConsideredPrecedents != nil {
		d.ConsideredPrecedents = append([]string(nil), d.ConsideredPrecedents...)
	}
	if d.Perspectives != nil {
		views := make(models.Perspectives, len(d.Perspectives))
		for i, p := range d.Perspectives {
			p.Arguments = append([]string(nil), p.Arguments...)
			views[i] = p
		}
		d.Perspectives = views
	}
	return &d
}

// Create stores a new decision
func (r *DecisionRepository) Create(_ context.Context, d *models.Decision) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cases[d.CaseID]; !ok {
		return repository.ErrNotFound
	}
	d.ID = uuid.New()
	d.DecidedAt = r.s.now()
	r.s.decisions[d.ID] = *copyDecision(*d)
	r.s.order[d.ID] = len(r.s.order)
	return nil
}

// GetByID retrieves a decision by ID
func (r *DecisionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Decision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.decisions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyDecision(d), nil
}

func (r *DecisionRepository) byCase(caseID uuid.UUID) []*models.Decision {
	decisions := make([]*models.Decision, 0)
	for _, d := range r.s.decisions {
		if d.CaseID == caseID {
			decisions = append(decisions, copyDecision(d))
		}
	}
	// Insertion order breaks ties between equal timestamps.
	sort.Slice(decisions, func(i, j int) bool {
		if !decisions[i].DecidedAt.Equal(decisions[j].DecidedAt) {
			return decisions[i].DecidedAt.After(decisions[j].DecidedAt)
		}
		return r.s.order[decisions[i].ID] > r.s.order[decisions[j].ID]
	})
	return decisions
}

// GetLatestByCaseID retrieves the most recent decision for a case
func (r *DecisionRepository) GetLatestByCaseID(_ context.Context, caseID uuid.UUID) (*models.Decision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	decisions := r.byCase(caseID)
	if len(decisions) == 0 {
		return nil, repository.ErrNotFound
	}
	return decisions[0], nil
}

// ListByCaseID retrieves every decision of a case, newest first
func (r *DecisionRepository) ListByCaseID(_ context.Context, caseID uuid.UUID) ([]*models.Decision, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.byCase(caseID), nil
}

// SetDocumentPath records where the rendered resolution was archived
func (r *DecisionRepository) SetDocumentPath(_ context.Context, id uuid.UUID, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.decisions[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.DocumentPath = &path
	r.s.decisions[id] = d
	return nil
}

// Approve signs off a decision and resolves its case atomically
func (r *DecisionRepository) Approve(_ context.Context, approval models.DecisionApproval) (*models.Decision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.decisions[approval.DecisionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if _, ok := r.s.cases[d.CaseID]; !ok {
		return nil, repository.ErrNotFound
	}

	official := approval.OfficialID
	notes := approval.Observations
	at := approval.ApprovedAt
	d.ApprovedBy = &official
	d.ApprovalNotes = &notes
	d.ApprovedAt = &at
	r.s.decisions[d.ID] = d

	if err := r.s.setStatus(d.CaseID, models.CaseStatusResolved, at); err != nil {
		return nil, err
	}
	return copyDecision(d), nil
}

// AuditRepository is the in-memory audit trail
type AuditRepository struct{ s *Store }

// Create appends an audit event
func (r *AuditRepository) Create(_ context.Context, event *models.AuditEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	event.ID = uuid.New()
	event.CreatedAt = r.s.now()
	r.s.audit = append(r.s.audit, *event)
	return nil
}

// ListByCaseID retrieves the audit trail of a case in chronological order
func (r *AuditRepository) ListByCaseID(_ context.Context, caseID uuid.UUID) ([]*models.AuditEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	events := make([]*models.AuditEvent, 0)
	for _, e := range r.s.audit {
		if e.CaseID == caseID {
			e := e
			events = append(events, &e)
		}
	}
	return events, nil
}

// FileRepository is the in-memory evidence file store
type FileRepository struct{ s *Store }

// Create stores evidence file metadata
func (r *FileRepository) Create(_ context.Context, file *models.EvidenceFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	file.ID = uuid.New()
	file.CreatedAt = r.s.now()
	r.s.files[file.ID] = *file
	return nil
}

// GetByID retrieves evidence file metadata by ID
func (r *FileRepository) GetByID(_ context.Context, id uuid.UUID) (*models.EvidenceFile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

// ListByCaseID retrieves the evidence files of a case
func (r *FileRepository) ListByCaseID(_ context.Context, caseID uuid.UUID) ([]*models.EvidenceFile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	files := make([]*models.EvidenceFile, 0)
	for _, f := range r.s.files {
		if f.CaseID == caseID {
			f := f
			files = append(files, &f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.After(files[j].CreatedAt) })
	return files, nil
}

// ReferenceRepository is the in-memory reference data store
type ReferenceRepository struct{ s *Store }

// FindRecent returns up to limit precedents of a case type, most recent first
func (r *ReferenceRepository) FindRecent(_ context.Context, caseType string, limit int) ([]models.Precedent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	matches := r.filter(caseType)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ListPrecedents returns every precedent, optionally narrowed to a case type
func (r *ReferenceRepository) ListPrecedents(_ context.Context, caseType string) ([]models.Precedent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if caseType == "" {
		all := append([]models.Precedent{}, r.s.precedents...)
		sortByDate(all)
		return all, nil
	}
	return r.filter(caseType), nil
}

func (r *ReferenceRepository) filter(caseType string) []models.Precedent {
	matches := make([]models.Precedent, 0)
	for _, p := range r.s.precedents {
		if p.CaseType == caseType {
			matches = append(matches, p)
		}
	}
	sortByDate(matches)
	return matches
}

func sortByDate(precedents []models.Precedent) {
	sort.SliceStable(precedents, func(i, j int) bool {
		return precedents[i].DecisionDate.After(precedents[j].DecisionDate)
	})
}

// ListArticles returns the legal articles ordered by code and number
func (r *ReferenceRepository) ListArticles(_ context.Context) ([]models.LegalArticle, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	articles := append([]models.LegalArticle{}, r.s.articles...)
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].Code != articles[j].Code {
			return articles[i].Code < articles[j].Code
		}
		return strings.Compare(articles[i].ArticleNumber, articles[j].ArticleNumber) < 0
	})
	return articles, nil
}

// ListCriteria returns the classification criteria ordered by factor
func (r *ReferenceRepository) ListCriteria(_ context.Context) ([]models.ClassificationCriterion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	criteria := append([]models.ClassificationCriterion{}, r.s.criteria...)
	sort.Slice(criteria, func(i, j int) bool { return criteria[i].Factor < criteria[j].Factor })
	return criteria, nil
}
