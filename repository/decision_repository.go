package repository

import (
	"context"
	"errors"
	"fmt"

	"justicia-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DecisionRepository handles database operations for decisions
type DecisionRepository struct {
	db *pgxpool.Pool
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(db *pgxpool.Pool) *DecisionRepository {
	return &DecisionRepository{db: db}
}

const decisionColumns = `
		id, case_id, kind, outcome, awarded_amount, justification,
		applied_articles, considered_precedents, perspectives, confidence,
		approved_by, approval_notes, approved_at, document_path, decided_at`

func scanDecision(row pgx.Row) (*models.Decision, error) {
	d := &models.Decision{}
	err := row.Scan(
		&d.ID,
		&d.CaseID,
		&d.Kind,
		&d.Outcome,
		&d.AwardedAmount,
		&d.Justification,
		&d.AppliedArticles,
		&d.ConsideredPrecedents,
		&d.Perspectives,
		&d.Confidence,
		&d.ApprovedBy,
		&d.ApprovalNotes,
		&d.ApprovedAt,
		&d.DocumentPath,
		&d.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	if d.AppliedArticles == nil {
		d.AppliedArticles = make([]string, 0)
	}
	return d, nil
}

// Create stores a new decision
func (r *DecisionRepository) Create(ctx context.Context, d *models.Decision) error {
	query := `
		INSERT INTO decisions (
			case_id, kind, outcome, awarded_amount, justification,
			applied_articles, considered_precedents, perspectives, confidence
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, decided_at`

	articles := d.AppliedArticles
	if articles == nil {
		articles = []string{}
	}
	precedents := d.ConsideredPrecedents
	if precedents == nil {
		precedents = []string{}
	}

	return r.db.QueryRow(
		ctx, query,
		d.CaseID,
		d.Kind,
		d.Outcome,
		d.AwardedAmount,
		d.Justification,
		articles,
		precedents,
		d.Perspectives,
		d.Confidence,
	).Scan(&d.ID, &d.DecidedAt)
}

// GetByID retrieves a decision by ID
func (r *DecisionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Decision, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE id = $1`

	d, err := scanDecision(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// GetLatestByCaseID retrieves the most recent decision for a case
func (r *DecisionRepository) GetLatestByCaseID(ctx context.Context, caseID uuid.UUID) (*models.Decision, error) {
	query := `SELECT ` + decisionColumns + `
		FROM decisions
		WHERE case_id = $1
		ORDER BY decided_at DESC
		LIMIT 1`

	d, err := scanDecision(r.db.QueryRow(ctx, query, caseID))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// ListByCaseID retrieves every decision drafted for a case, newest first
func (r *DecisionRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.Decision, error) {
	query := `SELECT ` + decisionColumns + `
		FROM decisions
		WHERE case_id = $1
		ORDER BY decided_at DESC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decisions := make([]*models.Decision, 0)
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// SetDocumentPath records where the rendered resolution was archived
func (r *DecisionRepository) SetDocumentPath(ctx context.Context, id uuid.UUID, path string) error {
	tag, err := r.db.Exec(ctx, `UPDATE decisions SET document_path = $2 WHERE id = $1`, id, path)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Approve signs off a decision and resolves its case in one transaction
func (r *DecisionRepository) Approve(ctx context.Context, approval models.DecisionApproval) (*models.Decision, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE decisions SET
			approved_by = $2,
			approval_notes = $3,
			approved_at = $4
		WHERE id = $1
		RETURNING ` + decisionColumns

	d, err := scanDecision(tx.QueryRow(
		ctx, query,
		approval.DecisionID,
		approval.OfficialID,
		approval.Observations,
		approval.ApprovedAt,
	))
	if err != nil {
		return nil, notFound(err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE cases SET
			status = $2,
			resolved_at = $3
		WHERE id = $1`,
		d.CaseID, models.CaseStatusResolved, approval.ApprovedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve case: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.Join(ErrNotFound, fmt.Errorf("case %s of decision %s", d.CaseID, d.ID))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	return d, nil
}
