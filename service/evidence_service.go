package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"justicia-backend/models"
	"justicia-backend/storage"

	"github.com/google/uuid"
)

// DefaultMaxEvidenceSize is the upload cap unless configured otherwise.
const DefaultMaxEvidenceSize int64 = 10 * 1024 * 1024

var allowedEvidenceTypes = map[string]bool{
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// EvidenceService stores documents attached to cases
type EvidenceService struct {
	files   FileStore
	cases   CaseStore
	audit   AuditStore
	storage storage.Storage
	maxSize int64
	logger  *slog.Logger
}

// EvidenceServiceOption is a functional option for EvidenceService
type EvidenceServiceOption func(*EvidenceService)

// WithFileStore sets the evidence metadata store
func WithFileStore(store FileStore) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.files = store
	}
}

// WithEvidenceCaseStore sets the case store used to check the target case
func WithEvidenceCaseStore(store CaseStore) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.cases = store
	}
}

// WithEvidenceAuditStore sets the audit trail
func WithEvidenceAuditStore(store AuditStore) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.audit = store
	}
}

// WithEvidenceStorage sets the document storage
func WithEvidenceStorage(st storage.Storage) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.storage = st
	}
}

// WithMaxEvidenceSize sets the upload cap in bytes
func WithMaxEvidenceSize(n int64) EvidenceServiceOption {
	return func(s *EvidenceService) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithEvidenceLogger sets the logger
func WithEvidenceLogger(logger *slog.Logger) EvidenceServiceOption {
	return func(s *EvidenceService) {
		s.logger = logger
	}
}

// NewEvidenceService creates a new evidence service
func NewEvidenceService(opts ...EvidenceServiceOption) *EvidenceService {
	s := &EvidenceService{
		maxSize: DefaultMaxEvidenceSize,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxSize returns the upload cap in bytes
func (s *EvidenceService) MaxSize() int64 {
	return s.maxSize
}

// UploadEvidenceRequest represents a document to attach to a case
type UploadEvidenceRequest struct {
	CaseID      uuid.UUID
	UploadedBy  *uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// UploadEvidenceResult represents the stored file metadata
type UploadEvidenceResult struct {
	File *models.EvidenceFile
}

// UploadEvidence validates and stores a document, then records its metadata
func (s *EvidenceService) UploadEvidence(ctx context.Context, req UploadEvidenceRequest) (_ *UploadEvidenceResult, err error) {
	ctx, span := startSpan(ctx, "EvidenceService.UploadEvidence",
		attribute.String("case.id", req.CaseID.String()),
		attribute.Int64("file.size", req.Size),
	)
	defer func() { endSpan(span, err) }()

	if s.files == nil || s.storage == nil {
		return nil, notConfigured("file store and document storage")
	}

	mimeType, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	if s.cases != nil {
		if _, err := s.cases.GetByID(ctx, req.CaseID); err != nil {
			return nil, notFound(err, ErrCaseNotFound)
		}
	}

	// Read one byte past the cap so a lying Size cannot slip through.
	data, err := io.ReadAll(io.LimitReader(req.Data, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: file size exceeds maximum of %d bytes", ErrInvalidFile, s.maxSize)
	}

	storagePath, err := s.storage.Put(ctx, storage.KindEvidence, uuid.New(), req.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	file := &models.EvidenceFile{
		CaseID:      req.CaseID,
		UploadedBy:  req.UploadedBy,
		Filename:    req.Filename,
		MimeType:    mimeType,
		Size:        int64(len(data)),
		StoragePath: storagePath,
	}
	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned upload", "path", storagePath, "error", delErr)
		}
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	s.logger.InfoContext(ctx, "evidence attached",
		"case_id", req.CaseID,
		"file_id", file.ID,
		"size", file.Size,
	)
	recordAudit(ctx, s.audit, s.logger, &models.AuditEvent{
		CaseID:      req.CaseID,
		EventType:   models.AuditEvidenceAttached,
		Description: fmt.Sprintf("Evidence attached: %s", file.Filename),
		UserID:      req.UploadedBy,
	})

	return &UploadEvidenceResult{File: file}, nil
}

// validate checks the declared size and type, inferring the type from the
// extension when none is given.
func (s *EvidenceService) validate(req UploadEvidenceRequest) (string, error) {
	if req.Data == nil {
		return "", fmt.Errorf("%w: file is required", ErrInvalidFile)
	}
	if strings.TrimSpace(req.Filename) == "" {
		return "", fmt.Errorf("%w: filename is required", ErrInvalidFile)
	}
	if req.Size > s.maxSize {
		return "", fmt.Errorf("%w: file size exceeds maximum of %d bytes", ErrInvalidFile, s.maxSize)
	}

	mimeType := req.ContentType
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = storage.ContentType(req.Filename)
	}
	if !allowedEvidenceTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		return "", fmt.Errorf("%w: file type %s is not allowed; allowed types: PDF, TXT, DOC, DOCX", ErrInvalidFile, mimeType)
	}
	return mimeType, nil
}

// GetFile retrieves evidence file metadata
func (s *EvidenceService) GetFile(ctx context.Context, id uuid.UUID) (_ *models.EvidenceFile, err error) {
	ctx, span := startSpan(ctx, "EvidenceService.GetFile", attribute.String("file.id", id.String()))
	defer func() { endSpan(span, err) }()

	if s.files == nil {
		return nil, notConfigured("file store")
	}
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrFileNotFound)
	}
	return file, nil
}

// ListEvidence lists the files attached to a case
func (s *EvidenceService) ListEvidence(ctx context.Context, caseID uuid.UUID) (_ []*models.EvidenceFile, err error) {
	ctx, span := startSpan(ctx, "EvidenceService.ListEvidence", attribute.String("case.id", caseID.String()))
	defer func() { endSpan(span, err) }()

	if s.files == nil {
		return nil, notConfigured("file store")
	}
	if s.cases != nil {
		if _, err := s.cases.GetByID(ctx, caseID); err != nil {
			return nil, notFound(err, ErrCaseNotFound)
		}
	}
	return s.files.ListByCaseID(ctx, caseID)
}

// OpenFile returns the metadata and content of an evidence file. Callers
// must close the reader.
func (s *EvidenceService) OpenFile(ctx context.Context, id uuid.UUID) (*models.EvidenceFile, io.ReadCloser, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.storage == nil {
		return nil, nil, notConfigured("document storage")
	}
	body, err := s.storage.Open(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, err
	}
	return file, body, nil
}
