package repository

import (
	"context"

	"justicia-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FileRepository handles database operations for evidence files
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// Create creates a new evidence file record
func (r *FileRepository) Create(ctx context.Context, file *models.EvidenceFile) error {
	query := `
		INSERT INTO evidence_files (
			case_id, uploaded_by, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		file.CaseID,
		file.UploadedBy,
		file.Filename,
		file.MimeType,
		file.Size,
		file.StoragePath,
	).Scan(&file.ID, &file.CreatedAt)
}

// GetByID retrieves an evidence file by ID
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EvidenceFile, error) {
	file := &models.EvidenceFile{}
	query := `
		SELECT id, case_id, uploaded_by, filename, mime_type, size, storage_path, created_at
		FROM evidence_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.CaseID,
		&file.UploadedBy,
		&file.Filename,
		&file.MimeType,
		&file.Size,
		&file.StoragePath,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return file, nil
}

// ListByCaseID retrieves all evidence files attached to a case
func (r *FileRepository) ListByCaseID(ctx context.Context, caseID uuid.UUID) ([]*models.EvidenceFile, error) {
	query := `
		SELECT id, case_id, uploaded_by, filename, mime_type, size, storage_path, created_at
		FROM evidence_files
		WHERE case_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]*models.EvidenceFile, 0)
	for rows.Next() {
		file := &models.EvidenceFile{}
		err := rows.Scan(
			&file.ID,
			&file.CaseID,
			&file.UploadedBy,
			&file.Filename,
			&file.MimeType,
			&file.Size,
			&file.StoragePath,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}
