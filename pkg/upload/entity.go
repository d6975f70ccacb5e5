package upload

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf and docx are allowed")
	ErrTooLarge          = errors.New("file is too large")
	ErrEmptyFile         = errors.New("file is empty")
	ErrNotFound          = errors.New("upload not found")
)

// Upload is the metadata of an imported résumé file.
type Upload struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    uuid.UUID `json:"ownerId"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	StorageURI string    `json:"-"`
	// Excerpt is the plain text of the document, kept as rewrite context.
	Excerpt   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, u Upload) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]Upload, error)
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Upload, error)
	// LatestForOwner returns the most recent upload, or ErrNotFound.
	LatestForOwner(ctx context.Context, ownerID uuid.UUID) (Upload, error)
	// DeleteForOwner returns the deleted metadata so the file can be removed.
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (Upload, error)
}
