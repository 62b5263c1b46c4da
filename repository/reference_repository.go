package repository

import (
	"context"
	"fmt"

	"justicia-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceRepository handles the legal reference tables: articles,
// precedents and classification criteria
type ReferenceRepository struct {
	db *pgxpool.Pool
}

// NewReferenceRepository creates a new reference repository
func NewReferenceRepository(db *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// FindRecent returns up to limit precedents of a case type, most recent first.
// The match on case type is exact.
func (r *ReferenceRepository) FindRecent(ctx context.Context, caseType string, limit int) ([]models.Precedent, error) {
	query := `
		SELECT id, title, issuing_body, decision_date, case_type, summarized_facts,
			outcome, approximate_amount, applied_principles
		FROM precedents
		WHERE case_type = $1
		ORDER BY decision_date DESC
		LIMIT $2`

	return r.queryPrecedents(ctx, query, caseType, limit)
}

// ListPrecedents returns every precedent, optionally narrowed to a case type
func (r *ReferenceRepository) ListPrecedents(ctx context.Context, caseType string) ([]models.Precedent, error) {
	query := `
		SELECT id, title, issuing_body, decision_date, case_type, summarized_facts,
			outcome, approximate_amount, applied_principles
		FROM precedents`

	var args []interface{}
	if caseType != "" {
		query += " WHERE case_type = $1"
		args = append(args, caseType)
	}
	query += " ORDER BY decision_date DESC"

	return r.queryPrecedents(ctx, query, args...)
}

func (r *ReferenceRepository) queryPrecedents(ctx context.Context, query string, args ...interface{}) ([]models.Precedent, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query precedents: %w", err)
	}
	defer rows.Close()

	precedents := make([]models.Precedent, 0)
	for rows.Next() {
		var p models.Precedent
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.IssuingBody,
			&p.DecisionDate,
			&p.CaseType,
			&p.SummarizedFacts,
			&p.Outcome,
			&p.ApproximateAmount,
			&p.AppliedPrinciples,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan precedent: %w", err)
		}
		precedents = append(precedents, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating precedents: %w", err)
	}

	return precedents, nil
}

// UpsertPrecedent stores a precedent keyed by title
func (r *ReferenceRepository) UpsertPrecedent(ctx context.Context, p *models.Precedent) error {
	query := `
		INSERT INTO precedents (
			title, issuing_body, decision_date, case_type, summarized_facts,
			outcome, approximate_amount, applied_principles
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (title) DO UPDATE SET
			issuing_body = EXCLUDED.issuing_body,
			decision_date = EXCLUDED.decision_date,
			case_type = EXCLUDED.case_type,
			summarized_facts = EXCLUDED.summarized_facts,
			outcome = EXCLUDED.outcome,
			approximate_amount = EXCLUDED.approximate_amount,
			applied_principles = EXCLUDED.applied_principles
		RETURNING id`

	return r.db.QueryRow(
		ctx, query,
		p.Title,
		p.IssuingBody,
		p.DecisionDate,
		p.CaseType,
		p.SummarizedFacts,
		p.Outcome,
		p.ApproximateAmount,
		p.AppliedPrinciples,
	).Scan(&p.ID)
}

// ListArticles returns the legal articles ordered by code and number
func (r *ReferenceRepository) ListArticles(ctx context.Context) ([]models.LegalArticle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, article_number, code, title, text
		FROM legal_articles
		ORDER BY code, article_number`)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal articles: %w", err)
	}
	defer rows.Close()

	articles := make([]models.LegalArticle, 0)
	for rows.Next() {
		var a models.LegalArticle
		if err := rows.Scan(&a.ID, &a.ArticleNumber, &a.Code, &a.Title, &a.Text); err != nil {
			return nil, fmt.Errorf("failed to scan legal article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// UpsertArticle stores a legal article, replacing the text of an existing one
func (r *ReferenceRepository) UpsertArticle(ctx context.Context, a *models.LegalArticle) error {
	query := `
		INSERT INTO legal_articles (article_number, code, title, text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code, article_number) DO UPDATE SET
			title = EXCLUDED.title,
			text = EXCLUDED.text
		RETURNING id`

	return r.db.QueryRow(ctx, query, a.ArticleNumber, a.Code, a.Title, a.Text).Scan(&a.ID)
}

// ListCriteria returns the stored classification criteria
func (r *ReferenceRepository) ListCriteria(ctx context.Context) ([]models.ClassificationCriterion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT factor, description, weight, minimum_tier
		FROM classification_criteria
		ORDER BY factor`)
	if err != nil {
		return nil, fmt.Errorf("failed to query classification criteria: %w", err)
	}
	defer rows.Close()

	criteria := make([]models.ClassificationCriterion, 0)
	for rows.Next() {
		var c models.ClassificationCriterion
		if err := rows.Scan(&c.Factor, &c.Description, &c.Weight, &c.MinimumTier); err != nil {
			return nil, fmt.Errorf("failed to scan classification criterion: %w", err)
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

// UpsertCriterion stores a classification criterion keyed by factor
func (r *ReferenceRepository) UpsertCriterion(ctx context.Context, c models.ClassificationCriterion) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO classification_criteria (factor, description, weight, minimum_tier)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (factor) DO UPDATE SET
			description = EXCLUDED.description,
			weight = EXCLUDED.weight,
			minimum_tier = EXCLUDED.minimum_tier`,
		c.Factor, c.Description, c.Weight, c.MinimumTier)
	return err
}
