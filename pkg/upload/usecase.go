package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/profile"
)

// UseCase imports résumé files into structured profile records.
type UseCase interface {
	Import(ctx context.Context, sess identity.Session, ownerID uuid.UUID, in File) (Result, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]Upload, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// LatestExcerpt returns the text of the user's last upload, or "".
	LatestExcerpt(ctx context.Context, ownerID uuid.UUID) string
}

type File struct {
	Filename string
	MimeType string
	Data     []byte
}

type Result struct {
	Upload Upload         `json:"upload"`
	Record profile.Record `json:"cv"`
}

type Options struct {
	Dir          string
	MaxBytes     int64
	ExcerptChars int
}

type service struct {
	repo   Repository
	parser Parser
	opts   Options
	log    *slog.Logger
}

func NewService(repo Repository, parser Parser, opts Options, log *slog.Logger) UseCase {
	if opts.Dir == "" {
		opts.Dir = "uploads"
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 15 << 20
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = 8000
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{repo: repo, parser: parser, opts: opts, log: log}
}

func (s *service) Import(ctx context.Context, sess identity.Session, ownerID uuid.UUID, in File) (Result, error) {
	if !Supported(in.Filename) {
		return Result{}, ErrUnsupportedFormat
	}
	if len(in.Data) == 0 {
		return Result{}, ErrEmptyFile
	}
	if int64(len(in.Data)) > s.opts.MaxBytes {
		return Result{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.opts.MaxBytes)
	}

	text, err := ExtractText(in.Filename, in.Data)
	if err != nil {
		s.log.Warn("text extraction failed", "filename", in.Filename, "err", err)
	}

	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("prepare upload dir: %w", err)
	}
	id := uuid.New()
	dst := filepath.Join(s.opts.Dir, id.String()+strings.ToLower(filepath.Ext(in.Filename)))
	if err := os.WriteFile(dst, in.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("store upload: %w", err)
	}

	meta := Upload{
		ID:         id,
		OwnerID:    ownerID,
		Filename:   filepath.Base(in.Filename),
		MimeType:   in.MimeType,
		Size:       int64(len(in.Data)),
		StorageURI: dst,
		Excerpt:    Excerpt(text, s.opts.ExcerptChars),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, meta); err != nil {
		_ = os.Remove(dst)
		return Result{}, fmt.Errorf("save upload metadata: %w", err)
	}

	raw, err := s.parser.Parse(ctx, sess, Document{Filename: meta.Filename, Data: in.Data, Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("parse upload: %w", err)
	}
	rec := profile.Normalize(raw, profile.WithMasterHint(true))
	s.log.Info("resume imported", "upload", id, "experiences", len(rec.Experiences))
	return Result{Upload: meta, Record: rec}, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]Upload, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID, 50, 0)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Upload{}
	}
	return items, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	meta, err := s.repo.DeleteForOwner(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if meta.StorageURI != "" {
		if err := os.Remove(meta.StorageURI); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("remove upload file", "path", meta.StorageURI, "err", err)
		}
	}
	return nil
}

func (s *service) LatestExcerpt(ctx context.Context, ownerID uuid.UUID) string {
	u, err := s.repo.LatestForOwner(ctx, ownerID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("load latest upload", "owner", ownerID, "err", err)
		}
		return ""
	}
	return u.Excerpt
}
