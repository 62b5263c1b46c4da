package service

import (
	"context"

	"justicia-backend/models"

	"github.com/google/uuid"
)

// CaseStore persists cases
type CaseStore interface {
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, cs *models.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	List(ctx context.Context, filter models.CaseFilter) ([]*models.Case, error)
	Update(ctx context.Context, cs *models.Case) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error
	CountByTier(ctx context.Context) (map[int]int, error)
	CountByStatus(ctx context.Context) (map[models.CaseStatus]int, error)
}

// DecisionStore persists drafted decisions
type DecisionStore interface {
	Create(ctx context.Context, d *models.Decision) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Decision, error)
	GetLatestByCaseID(ctx context.Context, caseID uuid.UUID) (*models.Decision, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.Decision, error)
	SetDocumentPath(ctx context.Context, id uuid.UUID, path string) error
	Approve(ctx context.Context, approval models.DecisionApproval) (*models.Decision, error)
}

// AuditStore appends to and reads the audit trail
type AuditStore interface {
	Create(ctx context.Context, event *models.AuditEvent) error
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.AuditEvent, error)
}

// FileStore persists evidence file metadata
type FileStore interface {
	Create(ctx context.Context, file *models.EvidenceFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceFile, error)
	ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.EvidenceFile, error)
}

// UserStore looks up parties and officials
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ReferenceStore reads legal articles, precedents and classification criteria
type ReferenceStore interface {
	ListArticles(ctx context.Context) ([]models.LegalArticle, error)
	ListPrecedents(ctx context.Context, caseType string) ([]models.Precedent, error)
	ListCriteria(ctx context.Context) ([]models.ClassificationCriterion, error)
}
