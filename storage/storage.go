package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no document exists at a storage path.
var ErrNotFound = errors.New("storage: document not found")

// ErrInvalidPath is returned for storage paths that escape the store.
var ErrInvalidPath = errors.New("storage: invalid path")

// DocumentKind groups stored documents under a top-level prefix
type DocumentKind string

const (
	KindEvidence    DocumentKind = "evidence"
	KindResolutions DocumentKind = "resolutions"
)

// Storage interface for document storage operations
type Storage interface {
	// Put stores a document and returns its storage path
	Put(ctx context.Context, kind DocumentKind, id uuid.UUID, filename string, data io.Reader) (string, error)

	// Open retrieves a document by storage path
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes a document by storage path
	Delete(ctx context.Context, storagePath string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("an S3 bucket is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// generateStoragePath builds "<kind>/<id prefix>/<id>_<name><ext>".
func generateStoragePath(kind DocumentKind, id uuid.UUID, filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" || filename == ".." {
		filename = "document"
	}
	ext := path.Ext(filename)
	baseName := strings.TrimSuffix(filename, ext)
	baseName = strings.ReplaceAll(baseName, " ", "_")
	if baseName == "" {
		baseName = "document"
	}

	return fmt.Sprintf("%s/%s/%s_%s%s", kind, id.String()[:2], id.String(), baseName, ext)
}

// cleanStoragePath rejects absolute paths and parent references.
func cleanStoragePath(storagePath string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(storagePath, "\\", "/"))
	if cleaned == "." || strings.HasPrefix(cleaned, "/") || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, storagePath)
	}
	return cleaned, nil
}

// ContentType determines content type from filename
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
