package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"justicia-backend/models"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

const sqliteDateLayout = "2006-01-02"

// SQLitePrecedentStore serves precedent lookups from a local SQLite
// snapshot, so the decision generator can run without Postgres.
type SQLitePrecedentStore struct {
	db *sql.DB
}

// OpenSQLitePrecedentStore opens (or creates) a snapshot file.
func OpenSQLitePrecedentStore(path string) (*SQLitePrecedentStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open precedent snapshot: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	s, err := NewSQLitePrecedentStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLitePrecedentStore wraps an open database and ensures the table exists.
func NewSQLitePrecedentStore(db *sql.DB) (*SQLitePrecedentStore, error) {
	s := &SQLitePrecedentStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate precedent snapshot: %w", err)
	}
	return s, nil
}

func (s *SQLitePrecedentStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS precedents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL UNIQUE,
		issuing_body TEXT NOT NULL,
		decision_date TEXT NOT NULL,
		case_type TEXT NOT NULL,
		summarized_facts TEXT NOT NULL,
		outcome TEXT NOT NULL,
		approximate_amount REAL NOT NULL DEFAULT 0,
		applied_principles TEXT NOT NULL DEFAULT ''
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Close closes the underlying database.
func (s *SQLitePrecedentStore) Close() error {
	return s.db.Close()
}

// Store inserts or replaces a precedent, keyed by title.
func (s *SQLitePrecedentStore) Store(ctx context.Context, p *models.Precedent) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `INSERT INTO precedents (
		id, title, issuing_body, decision_date, case_type, summarized_facts, outcome, approximate_amount, applied_principles
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (title) DO UPDATE SET
		issuing_body = excluded.issuing_body,
		decision_date = excluded.decision_date,
		case_type = excluded.case_type,
		summarized_facts = excluded.summarized_facts,
		outcome = excluded.outcome,
		approximate_amount = excluded.approximate_amount,
		applied_principles = excluded.applied_principles`

	_, err := s.db.ExecContext(ctx, query,
		p.ID.String(), p.Title, p.IssuingBody, p.DecisionDate.Format(sqliteDateLayout), p.CaseType,
		p.SummarizedFacts, p.Outcome, p.ApproximateAmount, p.AppliedPrinciples,
	)
	if err != nil {
		return fmt.Errorf("failed to insert precedent: %w", err)
	}
	return nil
}

// FindRecent returns up to limit precedents of a case type, most recent first.
func (s *SQLitePrecedentStore) FindRecent(ctx context.Context, caseType string, limit int) ([]models.Precedent, error) {
	query := `
		SELECT id, title, issuing_body, decision_date, case_type, summarized_facts, outcome, approximate_amount, applied_principles
		FROM precedents
		WHERE case_type = ?
		ORDER BY decision_date DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, caseType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query precedents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	precedents := make([]models.Precedent, 0)
	for rows.Next() {
		var (
			p       models.Precedent
			id      string
			decided string
		)
		err := rows.Scan(&id, &p.Title, &p.IssuingBody, &decided, &p.CaseType,
			&p.SummarizedFacts, &p.Outcome, &p.ApproximateAmount, &p.AppliedPrinciples)
		if err != nil {
			return nil, fmt.Errorf("failed to scan precedent: %w", err)
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("precedent %q has invalid id: %w", p.Title, err)
		}
		if p.DecisionDate, err = time.Parse(sqliteDateLayout, decided); err != nil {
			return nil, fmt.Errorf("precedent %q has invalid decision date: %w", p.Title, err)
		}
		precedents = append(precedents, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating precedents: %w", err)
	}
	return precedents, nil
}
