package optimize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/profile"
)

var (
	// ErrEmptyResult means the provider answered without usable content.
	ErrEmptyResult  = errors.New("optimizer returned no content")
	ErrInvalidInput = errors.New("invalid optimization request")
)

type DescriptionInput struct {
	Description   string `json:"description"`
	Position      string `json:"poste"`
	Company       string `json:"entreprise"`
	TargetJob     string `json:"targetJob"`
	JobOffer      string `json:"jobOffer"`
	ResumeExcerpt string `json:"-"`
}

type OfferInput struct {
	Target   string `json:"target"`
	JobOffer string `json:"jobOffer"`
	// Save persists the variant right away.
	Save bool `json:"save"`
}

type OfferResult struct {
	CV    profile.Record `json:"cv"`
	Match Match          `json:"match"`
}

type CoverLetterInput struct {
	CVName   string `json:"cvName"`
	JobOffer string `json:"jobOffer"`
	Company  string `json:"company"`
	Tone     string `json:"tone"`
	// Save stores the letter on the record.
	Save bool `json:"save"`
}

// Profiles is the part of the cv use case the optimizer needs.
type Profiles interface {
	Get(ctx context.Context, sess identity.Session, name string) (profile.Record, error)
	Save(ctx context.Context, sess identity.Session, rec profile.Record) (profile.Record, error)
}

// Excerpts provides the text of the user's last imported document.
type Excerpts interface {
	LatestExcerpt(ctx context.Context, ownerID uuid.UUID) string
}

type UseCase interface {
	Description(ctx context.Context, sess identity.Session, ownerID uuid.UUID, in DescriptionInput) (string, error)
	Offer(ctx context.Context, sess identity.Session, in OfferInput) (OfferResult, error)
	CoverLetter(ctx context.Context, sess identity.Session, in CoverLetterInput) (string, error)
}

type service struct {
	backend  Backend
	profiles Profiles
	excerpts Excerpts
	log      *slog.Logger
}

// NewService builds the optimizer. excerpts may be nil.
func NewService(backend Backend, profiles Profiles, excerpts Excerpts, log *slog.Logger) UseCase {
	if log == nil {
		log = slog.Default()
	}
	return &service{backend: backend, profiles: profiles, excerpts: excerpts, log: log}
}

func (s *service) Description(ctx context.Context, sess identity.Session, ownerID uuid.UUID, in DescriptionInput) (string, error) {
	if strings.TrimSpace(in.Description) == "" {
		return "", fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if in.ResumeExcerpt == "" && s.excerpts != nil {
		in.ResumeExcerpt = s.excerpts.LatestExcerpt(ctx, ownerID)
	}
	raw, err := s.backend.Description(ctx, sess, in)
	if err != nil {
		return "", fmt.Errorf("optimize description: %w", err)
	}
	text := profile.ExtractText(raw)
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

func (s *service) Offer(ctx context.Context, sess identity.Session, in OfferInput) (OfferResult, error) {
	in.Target = strings.TrimSpace(in.Target)
	if in.Target == "" || strings.TrimSpace(in.JobOffer) == "" {
		return OfferResult{}, fmt.Errorf("%w: target and job offer are required", ErrInvalidInput)
	}
	if strings.EqualFold(in.Target, profile.MainLabel) {
		return OfferResult{}, fmt.Errorf("%w: %q is reserved", ErrInvalidInput, profile.MainLabel)
	}
	master, err := s.profiles.Get(ctx, sess, profile.MainLabel)
	if err != nil {
		return OfferResult{}, err
	}
	raw, err := s.backend.Offer(ctx, sess, master, in.Target, in.JobOffer)
	if err != nil {
		return OfferResult{}, fmt.Errorf("optimize for offer: %w", err)
	}
	rec := profile.Normalize(raw, profile.AsMaster(false), profile.InheritImage(master.Image()))
	if isEmpty(rec) {
		return OfferResult{}, ErrEmptyResult
	}
	rec.Label = in.Target
	rec.JobOffer = in.JobOffer
	rec.Slug = ""
	rec.ID = ""

	if in.Save {
		if rec, err = s.profiles.Save(ctx, sess, rec); err != nil {
			return OfferResult{}, err
		}
		s.log.Info("offer variant saved", "target", in.Target, "slug", rec.Slug)
	}
	return OfferResult{CV: rec, Match: MatchOffer(rec, in.JobOffer)}, nil
}

func (s *service) CoverLetter(ctx context.Context, sess identity.Session, in CoverLetterInput) (string, error) {
	if strings.TrimSpace(in.JobOffer) == "" {
		return "", fmt.Errorf("%w: job offer is required", ErrInvalidInput)
	}
	rec, err := s.profiles.Get(ctx, sess, in.CVName)
	if err != nil {
		return "", err
	}
	raw, err := s.backend.CoverLetter(ctx, sess, rec, in)
	if err != nil {
		return "", fmt.Errorf("cover letter: %w", err)
	}
	letter := profile.ExtractText(raw, "coverLetter", "cover_letter", "lettre_motivation", "letter", "text")
	if letter == "" {
		return "", ErrEmptyResult
	}
	if in.Save {
		rec.CoverLetter = letter
		rec.JobOffer = in.JobOffer
		if _, err := s.profiles.Save(ctx, sess, rec); err != nil {
			return "", err
		}
	}
	return letter, nil
}

func isEmpty(r profile.Record) bool {
	return r.Person.FirstName == "" && r.Person.LastName == "" && r.Person.Title == "" &&
		r.Summary == "" && len(r.Experiences) == 0 && len(r.Projects) == 0
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonObject strips chatter around the first JSON object of a model reply.
func jsonObject(reply string) string {
	reply = strings.TrimSpace(reply)
	if i := strings.Index(reply, "{"); i >= 0 {
		if j := strings.LastIndex(reply, "}"); j > i {
			return reply[i : j+1]
		}
	}
	return reply
}
