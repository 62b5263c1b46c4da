package repository

import (
	"context"

	"justicia-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository handles database operations for the case audit trail
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit event
func (r *AuditRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (
			case_id, decision_id, event_type, description, user_id
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		event.CaseID,
		event.DecisionID,
		event.EventType,
		event.Description,
		event.UserID,
	).Scan(&event.ID, &event.CreatedAt)
}

// ListByCaseID retrieves the audit trail of a case in chronological order
func (r *AuditRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, case_id, decision_id, event_type, description, user_id, created_at
		FROM audit_events
		WHERE case_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*models.AuditEvent, 0)
	for rows.Next() {
		event := &models.AuditEvent{}
		err := rows.Scan(
			&event.ID,
			&event.CaseID,
			&event.DecisionID,
			&event.EventType,
			&event.Description,
			&event.UserID,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
