package repository

import (
	"context"
	"fmt"

	"justicia-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CaseRepository handles database operations for cases
type CaseRepository struct {
	db *pgxpool.Pool
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: db}
}

const caseColumns = `
		c.id, c.case_number, c.case_type, c.claimant_id, COALESCE(u.name, ''),
		c.respondent_name, c.claimed_amount, c.facts, c.evidence,
		c.has_response, c.raises_constitutional_issue,
		c.tier, c.confidence, c.classification_justification,
		c.status, c.filed_at, c.resolved_at`

func scanCase(row pgx.Row) (*models.Case, error) {
	cs := &models.Case{}
	err := row.Scan(
		&cs.ID,
		&cs.CaseNumber,
		&cs.CaseType,
		&cs.ClaimantID,
		&cs.ClaimantName,
		&cs.RespondentName,
		&cs.ClaimedAmount,
		&cs.Facts,
		&cs.Evidence,
		&cs.HasResponse,
		&cs.RaisesConstitutionalIssue,
		&cs.Tier,
		&cs.Confidence,
		&cs.ClassificationJustification,
		&cs.Status,
		&cs.FiledAt,
		&cs.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// NextSequence returns the next value of the case number sequence
func (r *CaseRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `SELECT nextval('case_number_seq')`).Scan(&seq)
	return seq, err
}

// Create creates a new case
func (r *CaseRepository) Create(ctx context.Context, cs *models.Case) error {
	query := `
		INSERT INTO cases (
			case_number, case_type, claimant_id, respondent_name, claimed_amount,
			facts, evidence, has_response, raises_constitutional_issue,
			tier, confidence, classification_justification, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, filed_at`

	return r.db.QueryRow(
		ctx, query,
		cs.CaseNumber,
		cs.CaseType,
		cs.ClaimantID,
		cs.RespondentName,
		cs.ClaimedAmount,
		cs.Facts,
		cs.Evidence,
		cs.HasResponse,
		cs.RaisesConstitutionalIssue,
		cs.Tier,
		cs.Confidence,
		cs.ClassificationJustification,
		cs.Status,
	).Scan(&cs.ID, &cs.FiledAt)
}

// GetByID retrieves a case by ID together with the claimant's name
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	query := `SELECT ` + caseColumns + `
		FROM cases c
		LEFT JOIN users u ON u.id = c.claimant_id
		WHERE c.id = $1`

	cs, err := scanCase(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return cs, nil
}

// List retrieves cases, most recently filed first
func (r *CaseRepository) List(ctx context.Context, filter models.CaseFilter) ([]*models.Case, error) {
	query := `SELECT ` + caseColumns + `
		FROM cases c
		LEFT JOIN users u ON u.id = c.claimant_id
		WHERE 1=1`

	var args []interface{}
	argIndex := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND c.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.Tier != nil {
		query += fmt.Sprintf(" AND c.tier = $%d", argIndex)
		args = append(args, *filter.Tier)
		argIndex++
	}

	query += " ORDER BY c.filed_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cases := make([]*models.Case, 0)
	for rows.Next() {
		cs, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, cs)
	}

	return cases, rows.Err()
}

// Update rewrites the narrative fields and the classification of a case
func (r *CaseRepository) Update(ctx context.Context, cs *models.Case) error {
	query := `
		UPDATE cases SET
			case_type = $2,
			respondent_name = $3,
			claimed_amount = $4,
			facts = $5,
			evidence = $6,
			has_response = $7,
			raises_constitutional_issue = $8,
			tier = $9,
			confidence = $10,
			classification_justification = $11
		WHERE id = $1`

	tag, err := r.db.Exec(
		ctx, query,
		cs.ID,
		cs.CaseType,
		cs.RespondentName,
		cs.ClaimedAmount,
		cs.Facts,
		cs.Evidence,
		cs.HasResponse,
		cs.RaisesConstitutionalIssue,
		cs.Tier,
		cs.Confidence,
		cs.ClassificationJustification,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus changes the status of a case. Resolving a case stamps resolved_at.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CaseStatus) error {
	query := `
		UPDATE cases SET
			status = $2,
			resolved_at = CASE WHEN $3 THEN NOW() ELSE resolved_at END
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, status, status == models.CaseStatusResolved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByTier returns the number of cases per tier
func (r *CaseRepository) CountByTier(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.Query(ctx, `SELECT tier, COUNT(*) FROM cases GROUP BY tier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var tier, n int
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[tier] = n
	}
	return counts, rows.Err()
}

// CountByStatus returns the number of cases per status
func (r *CaseRepository) CountByStatus(ctx context.Context) (map[models.CaseStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.CaseStatus]int)
	for rows.Next() {
		var status models.CaseStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
