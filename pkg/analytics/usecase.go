package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/profile"
	"github.com/nodalcv/server/pkg/workflow"
)

var (
	// ErrNotPublished is returned when the record has no public slug yet.
	ErrNotPublished = errors.New("cv has no public slug")
	ErrInvalidEvent = errors.New("slug and keyword are required")
)

type Backend interface {
	Analytics(ctx context.Context, sess identity.Session, slug string) (any, error)
	TrackEvent(ctx context.Context, ev workflow.TrackRequest) error
}

type Profiles interface {
	Get(ctx context.Context, sess identity.Session, name string) (profile.Record, error)
}

type UseCase interface {
	// Summary aggregates the events of the named record ("" for main).
	Summary(ctx context.Context, sess identity.Session, name string) (Summary, error)
	TrackKeyword(ctx context.Context, slug, keyword string) error
}

type service struct {
	backend  Backend
	profiles Profiles
	topN     int
	now      func() time.Time
}

func NewService(backend Backend, profiles Profiles, topN int) UseCase {
	if topN <= 0 {
		topN = 10
	}
	return &service{backend: backend, profiles: profiles, topN: topN, now: time.Now}
}

func (s *service) Summary(ctx context.Context, sess identity.Session, name string) (Summary, error) {
	rec, err := s.profiles.Get(ctx, sess, name)
	if err != nil {
		return Summary{}, err
	}
	if rec.Slug == "" {
		return Summary{}, ErrNotPublished
	}
	raw, err := s.backend.Analytics(ctx, sess, rec.Slug)
	if err != nil {
		return Summary{}, fmt.Errorf("load analytics: %w", err)
	}
	return Summarize(NormalizeEvents(raw), s.topN), nil
}

func (s *service) TrackKeyword(ctx context.Context, slug, keyword string) error {
	slug = strings.TrimSpace(slug)
	keyword = strings.TrimSpace(keyword)
	if slug == "" || keyword == "" {
		return ErrInvalidEvent
	}
	return s.backend.TrackEvent(ctx, workflow.TrackRequest{
		Slug:      slug,
		Type:      string(EventKeywords),
		Keyword:   keyword,
		Timestamp: s.now().UTC(),
	})
}
