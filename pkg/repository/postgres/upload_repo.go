package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nodalcv/server/pkg/upload"
)

// UploadRepository stores imported résumé files and their text excerpt.
type UploadRepository struct {
	pool *pgxpool.Pool
}

func NewUploadRepository(pool *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{pool: pool}
}

const uploadColumns = `id, owner_id, filename, mime_type, size_bytes, storage_uri, excerpt, created_at`

func (r *UploadRepository) Create(ctx context.Context, u upload.Upload) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO uploads (`+uploadColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, u.ID, u.OwnerID, u.Filename, u.MimeType, u.Size, u.StorageURI, u.Excerpt, u.CreatedAt)
	return err
}

func (r *UploadRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]upload.Upload, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
SELECT `+uploadColumns+`
FROM uploads WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []upload.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r *UploadRepository) GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (upload.Upload, error) {
	return scanOne(r.pool.QueryRow(ctx, `
SELECT `+uploadColumns+`
FROM uploads WHERE id = $1 AND owner_id = $2
`, id, ownerID))
}

func (r *UploadRepository) LatestForOwner(ctx context.Context, ownerID uuid.UUID) (upload.Upload, error) {
	return scanOne(r.pool.QueryRow(ctx, `
SELECT `+uploadColumns+`
FROM uploads WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT 1
`, ownerID))
}

func (r *UploadRepository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (upload.Upload, error) {
	return scanOne(r.pool.QueryRow(ctx, `
DELETE FROM uploads WHERE id = $1 AND owner_id = $2
RETURNING `+uploadColumns, id, ownerID))
}

func scanOne(row pgx.Row) (upload.Upload, error) {
	u, err := scanUpload(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return upload.Upload{}, upload.ErrNotFound
	}
	return u, err
}

func scanUpload(row pgx.Row) (upload.Upload, error) {
	var u upload.Upload
	var created time.Time
	if err := row.Scan(&u.ID, &u.OwnerID, &u.Filename, &u.MimeType, &u.Size, &u.StorageURI, &u.Excerpt, &created); err != nil {
		return upload.Upload{}, err
	}
	u.CreatedAt = created.UTC()
	return u, nil
}
