package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SchemaStep is one DDL statement of a schema, applied in order.
type SchemaStep struct {
	Name string
	SQL  string
}

// ReferenceSchema holds the read-mostly tables the engine consults.
var ReferenceSchema = []SchemaStep{
	{
		Name: "legal_articles table",
		SQL: `
CREATE TABLE IF NOT EXISTS legal_articles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    article_number VARCHAR(20) NOT NULL,
    code VARCHAR(20) NOT NULL,
    title VARCHAR(255) NOT NULL,
    text TEXT NOT NULL,
    UNIQUE (code, article_number)
);`,
	},
	{
		Name: "precedents table",
		SQL: `
CREATE TABLE IF NOT EXISTS precedents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    title VARCHAR(255) UNIQUE NOT NULL,
    issuing_body VARCHAR(255) NOT NULL,
    decision_date DATE NOT NULL,
    case_type VARCHAR(100) NOT NULL,
    summarized_facts TEXT NOT NULL,
    outcome VARCHAR(100) NOT NULL,
    approximate_amount NUMERIC(15,2) NOT NULL DEFAULT 0,
    applied_principles TEXT NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "precedents case_type index",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_precedents_case_type_date ON precedents (case_type, decision_date DESC);`,
	},
	{
		Name: "classification_criteria table",
		SQL: `
CREATE TABLE IF NOT EXISTS classification_criteria (
    factor VARCHAR(100) PRIMARY KEY,
    description TEXT NOT NULL,
    weight INTEGER NOT NULL,
    minimum_tier INTEGER NOT NULL CHECK (minimum_tier BETWEEN 1 AND 4)
);`,
	},
}

// CaseSchema holds the operational tables. Evidence files reference cases,
// decisions reference cases, and audit events reference both.
var CaseSchema = []SchemaStep{
	{
		Name: "users table",
		SQL: `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    name VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'claimant',
    created_at TIMESTAMP DEFAULT NOW()
);`,
	},
	{
		Name: "case_number_seq sequence",
		SQL:  `CREATE SEQUENCE IF NOT EXISTS case_number_seq START 1;`,
	},
	{
		Name: "cases table",
		SQL: `
CREATE TABLE IF NOT EXISTS cases (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_number VARCHAR(50) UNIQUE NOT NULL,
    case_type VARCHAR(100) NOT NULL,
    claimant_id UUID NOT NULL REFERENCES users(id),
    respondent_name VARCHAR(255) NOT NULL,
    claimed_amount NUMERIC(15,2) NOT NULL,
    facts TEXT NOT NULL,
    evidence TEXT NOT NULL DEFAULT '',
    has_response BOOLEAN NOT NULL DEFAULT TRUE,
    raises_constitutional_issue BOOLEAN NOT NULL DEFAULT FALSE,

    tier INTEGER NOT NULL CHECK (tier BETWEEN 1 AND 4),
    confidence NUMERIC(4,2) NOT NULL,
    classification_justification TEXT NOT NULL,

    status VARCHAR(20) NOT NULL DEFAULT 'classified',
    filed_at TIMESTAMP DEFAULT NOW(),
    resolved_at TIMESTAMP
);`,
	},
	{
		Name: "cases status index",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cases_status ON cases (status);`,
	},
	{
		Name: "decisions table",
		SQL: `
CREATE TABLE IF NOT EXISTS decisions (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    kind VARCHAR(20) NOT NULL,
    outcome VARCHAR(50) NOT NULL,
    awarded_amount NUMERIC(15,2),
    justification TEXT NOT NULL,
    applied_articles TEXT[] NOT NULL DEFAULT '{}',
    considered_precedents TEXT[] NOT NULL DEFAULT '{}',
    perspectives JSONB,
    confidence NUMERIC(4,2) NOT NULL,

    approved_by UUID REFERENCES users(id),
    approval_notes TEXT,
    approved_at TIMESTAMP,

    document_path TEXT,
    decided_at TIMESTAMP DEFAULT NOW()
);`,
	},
	{
		Name: "decisions case_id index",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_decisions_case_id ON decisions (case_id, decided_at DESC);`,
	},
	{
		Name: "evidence_files table",
		SQL: `
CREATE TABLE IF NOT EXISTS evidence_files (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    uploaded_by UUID REFERENCES users(id),
    filename VARCHAR(255) NOT NULL,
    mime_type VARCHAR(100) NOT NULL,
    size BIGINT NOT NULL,
    storage_path TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);`,
	},
	{
		Name: "audit_events table",
		SQL: `
CREATE TABLE IF NOT EXISTS audit_events (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    case_id UUID NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
    decision_id UUID REFERENCES decisions(id) ON DELETE SET NULL,
    event_type VARCHAR(50) NOT NULL,
    description TEXT NOT NULL,
    user_id UUID REFERENCES users(id),
    created_at TIMESTAMP DEFAULT NOW()
);`,
	},
	{
		Name: "audit_events case_id index",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_events_case_id ON audit_events (case_id, created_at);`,
	},
}

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ApplySchema runs every step in order, calling done after each one.
func ApplySchema(ctx context.Context, db Execer, steps []SchemaStep, done func(SchemaStep)) error {
	for _, step := range steps {
		if _, err := db.Exec(ctx, step.SQL); err != nil {
			return fmt.Errorf("failed to create %s: %w", step.Name, err)
		}
		if done != nil {
			done(step)
		}
	}
	return nil
}
