package workflow

import "time"

type SaveRequest struct {
	Email string `json:"email"`
	CV    any    `json:"cv"`
}

type DeleteRequest struct {
	Email  string `json:"email"`
	CVName string `json:"cv_name"`
}

const (
	SettingVisibility   = "is_public"
	SettingAvailability = "disponibilite"
)

type SettingRequest struct {
	Email  string `json:"email"`
	CVName string `json:"cv_name,omitempty"`
	Field  string `json:"field"`
	Value  any    `json:"value"`
}

// DescriptionRequest asks for a rewrite of one experience description.
type DescriptionRequest struct {
	Email         string `json:"email"`
	Description   string `json:"description"`
	Position      string `json:"poste,omitempty"`
	Company       string `json:"entreprise,omitempty"`
	TargetJob     string `json:"target_job,omitempty"`
	JobOffer      string `json:"job_offer,omitempty"`
	ResumeExcerpt string `json:"resume_excerpt,omitempty"`
}

// OfferRequest asks for a full variant of the master record targeted at an offer.
type OfferRequest struct {
	Email    string `json:"email"`
	CV       any    `json:"cv"`
	Target   string `json:"cv_name"`
	JobOffer string `json:"job_offer"`
}

type CoverLetterRequest struct {
	Email    string `json:"email"`
	CV       any    `json:"cv"`
	JobOffer string `json:"job_offer"`
	Company  string `json:"entreprise,omitempty"`
	Tone     string `json:"tone,omitempty"`
}

type TrackRequest struct {
	Slug      string    `json:"slug"`
	Type      string    `json:"type"`
	Keyword   string    `json:"keyword,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
