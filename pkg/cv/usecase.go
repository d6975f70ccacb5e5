package cv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/profile"
	"github.com/nodalcv/server/pkg/workflow"
)

var (
	ErrNotFound     = errors.New("cv not found")
	ErrDeleteMaster = errors.New("the main cv cannot be deleted")
	ErrInvalidSlug  = errors.New("invalid slug")
)

// Backend is the persistence side of the workflow backend.
type Backend interface {
	ListProfiles(ctx context.Context, sess identity.Session) (any, error)
	PublicProfile(ctx context.Context, slug string) (any, error)
	SaveProfile(ctx context.Context, sess identity.Session, rec any) (any, error)
	DeleteProfile(ctx context.Context, sess identity.Session, cvName string) error
	UpdateSetting(ctx context.Context, sess identity.Session, req workflow.SettingRequest) error
	TrackEvent(ctx context.Context, ev workflow.TrackRequest) error
	ExportPDF(ctx context.Context, sess identity.Session, slug string) ([]byte, string, error)
}

// Cache stores rendered public profiles. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type UseCase interface {
	List(ctx context.Context, sess identity.Session) ([]profile.Record, error)
	Get(ctx context.Context, sess identity.Session, name string) (profile.Record, error)
	Save(ctx context.Context, sess identity.Session, rec profile.Record) (profile.Record, error)
	Publish(ctx context.Context, sess identity.Session, rec profile.Record) (profile.Record, error)
	Delete(ctx context.Context, sess identity.Session, name string) error
	SetVisibility(ctx context.Context, sess identity.Session, rec profile.Record, public bool) error
	SetAvailability(ctx context.Context, sess identity.Session, rec profile.Record, a profile.Availability) error
	Public(ctx context.Context, slug string) (profile.Record, error)
	PDF(ctx context.Context, sess identity.Session, slug string) ([]byte, string, error)
	PublicPDF(ctx context.Context, slug string) ([]byte, string, error)
}

type service struct {
	backend  Backend
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewService wires the profile use cases. cache may be nil.
func NewService(backend Backend, cache Cache, cacheTTL time.Duration, log *slog.Logger) UseCase {
	if log == nil {
		log = slog.Default()
	}
	return &service{backend: backend, cache: cache, cacheTTL: cacheTTL, log: log, now: time.Now}
}

func (s *service) List(ctx context.Context, sess identity.Session) ([]profile.Record, error) {
	raw, err := s.backend.ListProfiles(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list cvs: %w", err)
	}
	recs := profile.NormalizeAll(raw)
	if recs == nil {
		recs = []profile.Record{}
	}
	return recs, nil
}

func (s *service) Get(ctx context.Context, sess identity.Session, name string) (profile.Record, error) {
	recs, err := s.List(ctx, sess)
	if err != nil {
		return profile.Record{}, err
	}
	rec, ok := profile.Find(recs, name)
	if !ok {
		return profile.Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *service) Save(ctx context.Context, sess identity.Session, rec profile.Record) (profile.Record, error) {
	if rec.IsMaster {
		rec.Label = profile.MainLabel
	}
	raw, err := s.backend.SaveProfile(ctx, sess, profile.ForWrite(rec))
	if err != nil {
		return profile.Record{}, fmt.Errorf("save cv: %w", err)
	}
	if slug := profile.ExtractSlug(raw); slug != "" {
		rec.Slug = slug
	}
	s.invalidate(ctx, rec.Slug)
	return rec, nil
}

func (s *service) Publish(ctx context.Context, sess identity.Session, rec profile.Record) (profile.Record, error) {
	if err := profile.ValidateForPublish(rec); err != nil {
		return profile.Record{}, err
	}
	rec.IsPublic = true
	return s.Save(ctx, sess, rec)
}

func (s *service) Delete(ctx context.Context, sess identity.Session, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, profile.MainLabel) {
		return ErrDeleteMaster
	}
	rec, err := s.Get(ctx, sess, name)
	if err != nil {
		return err
	}
	if rec.IsMaster {
		return ErrDeleteMaster
	}
	if err := s.backend.DeleteProfile(ctx, sess, rec.Label); err != nil {
		return fmt.Errorf("delete cv: %w", err)
	}
	s.invalidate(ctx, rec.Slug)
	return nil
}

func (s *service) SetVisibility(ctx context.Context, sess identity.Session, rec profile.Record, public bool) error {
	return s.setting(ctx, sess, rec, workflow.SettingVisibility, public)
}

func (s *service) SetAvailability(ctx context.Context, sess identity.Session, rec profile.Record, a profile.Availability) error {
	if _, ok := profile.ParseAvailability(string(a)); !ok {
		return fmt.Errorf("unknown availability %q", a)
	}
	return s.setting(ctx, sess, rec, workflow.SettingAvailability, a)
}

func (s *service) setting(ctx context.Context, sess identity.Session, rec profile.Record, field string, value any) error {
	err := s.backend.UpdateSetting(ctx, sess, workflow.SettingRequest{
		CVName: label(rec),
		Field:  field,
		Value:  value,
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, rec.Slug)
	return nil
}

// Public returns a published record with its timeline sorted, and records
// the visit. Records whose owner turned visibility off are ErrNotFound.
func (s *service) Public(ctx context.Context, slug string) (profile.Record, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return profile.Record{}, ErrInvalidSlug
	}
	rec, err := s.public(ctx, slug)
	if err != nil {
		return profile.Record{}, err
	}
	s.track(ctx, slug)
	return rec, nil
}

func (s *service) public(ctx context.Context, slug string) (profile.Record, error) {
	key := cacheKey(slug)
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("public cache read", "slug", slug, "err", err)
		}
		if ok {
			var rec profile.Record
			if err := json.Unmarshal(data, &rec); err == nil {
				return rec, nil
			}
		}
	}

	raw, err := s.backend.PublicProfile(ctx, slug)
	if err != nil {
		var herr *workflow.HTTPError
		if errors.As(err, &herr) && herr.Status == 404 {
			return profile.Record{}, ErrNotFound
		}
		return profile.Record{}, fmt.Errorf("public cv: %w", err)
	}
	recs := profile.NormalizeAll(raw)
	if len(recs) == 0 {
		return profile.Record{}, ErrNotFound
	}
	rec := recs[0].Chronological()
	if !rec.IsPublic {
		return profile.Record{}, ErrNotFound
	}
	if rec.Slug == "" {
		rec.Slug = slug
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if data, err := json.Marshal(rec); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.log.Warn("public cache write", "slug", slug, "err", err)
			}
		}
	}
	return rec, nil
}

func (s *service) track(ctx context.Context, slug string) {
	err := s.backend.TrackEvent(ctx, workflow.TrackRequest{Slug: slug, Type: "view", Timestamp: s.now().UTC()})
	if err != nil {
		s.log.Warn("track view", "slug", slug, "err", err)
	}
}

func (s *service) PDF(ctx context.Context, sess identity.Session, slug string) ([]byte, string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, "", ErrInvalidSlug
	}
	data, ct, err := s.backend.ExportPDF(ctx, sess, slug)
	if err != nil {
		return nil, "", fmt.Errorf("export pdf: %w", err)
	}
	return data, ct, nil
}

// PublicPDF exports a record for anonymous visitors, only while it is public.
func (s *service) PublicPDF(ctx context.Context, slug string) ([]byte, string, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, "", ErrInvalidSlug
	}
	if _, err := s.public(ctx, slug); err != nil {
		return nil, "", err
	}
	return s.PDF(ctx, identity.Anonymous(), slug)
}

func (s *service) invalidate(ctx context.Context, slug string) {
	if s.cache == nil || slug == "" {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(slug)); err != nil {
		s.log.Warn("public cache invalidate", "slug", slug, "err", err)
	}
}

func cacheKey(slug string) string { return "nodalcv:public:" + strings.ToLower(slug) }

func label(rec profile.Record) string {
	if rec.IsMaster || rec.Label == "" {
		return profile.MainLabel
	}
	return rec.Label
}
