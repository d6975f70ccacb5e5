package profile

import "github.com/nodalcv/server/pkg/timeline"

// Availability is the candidate's advertised notice period.
type Availability string

const (
	AvailabilityImmediate   Availability = "immediate"
	AvailabilityOneMonth    Availability = "1_month"
	AvailabilityThreeMonths Availability = "3_months"
	AvailabilityUnavailable Availability = "unavailable"
)

// MainLabel is the fixed label of the master record.
const MainLabel = "main"

// ParseAvailability reports whether s is a known availability value.
func ParseAvailability(s string) (Availability, bool) {
	switch a := Availability(s); a {
	case AvailabilityImmediate, AvailabilityOneMonth, AvailabilityThreeMonths, AvailabilityUnavailable:
		return a, true
	}
	return "", false
}

// Record is the canonical résumé profile every collaborator payload is
// normalized into. JSON names follow the workflow backend.
type Record struct {
	ID             string          `json:"id,omitempty"`
	Person         Person          `json:"personne"`
	Summary        string          `json:"resume"`
	Experiences    []Experience    `json:"experiences"`
	Projects       []Project       `json:"projets"`
	Education      []Education     `json:"formations"`
	Certifications []Certification `json:"certifications"`
	Skills         Skills          `json:"competences"`
	Photo          string          `json:"photo,omitempty"`
	PhotoTransform *ImageTransform `json:"photo_transform,omitempty"`
	IsPublic       bool            `json:"is_public"`
	Availability   Availability    `json:"disponibilite"`
	Slug           string          `json:"slug,omitempty"`
	IsMaster       bool            `json:"is_master"`
	Label          string          `json:"cv_name"`
	JobOffer       string          `json:"job_offer,omitempty"`
	CoverLetter    string          `json:"cover_letter,omitempty"`
}

type Person struct {
	FirstName string  `json:"prenom"`
	LastName  string  `json:"nom"`
	Title     string  `json:"titre"`
	Contact   Contact `json:"contact"`
}

type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"telephone"`
	LinkedIn string `json:"linkedin"`
	City     string `json:"ville"`
}

type Experience struct {
	Title       string `json:"poste"`
	Company     string `json:"entreprise"`
	Location    string `json:"lieu"`
	Start       string `json:"periode_debut"`
	End         string `json:"periode_fin"`
	Description string `json:"description"`
}

func (e Experience) Period() (string, string) { return e.Start, e.End }

type Project struct {
	Name         string   `json:"nom"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"lien"`
	Start        string   `json:"periode_debut"`
	End          string   `json:"periode_fin"`
}

func (p Project) Period() (string, string) { return p.Start, p.End }

type Education struct {
	Degree      string `json:"diplome"`
	School      string `json:"etablissement"`
	Start       string `json:"periode_debut"`
	End         string `json:"periode_fin"`
	Description string `json:"description"`
}

type Certification struct {
	Name   string `json:"nom"`
	Issuer string `json:"organisme"`
	Date   string `json:"date"`
	Link   string `json:"lien"`
}

// Skills always carries three non-nil lists after normalization.
type Skills struct {
	Hard      []string `json:"hard_skills"`
	Soft      []string `json:"soft_skills"`
	Languages []string `json:"langues"`
}

// ImageTransform positions the profile photo inside its frame.
type ImageTransform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Image is the photo shared by a master record with its variants.
type Image struct {
	Photo     string
	Transform *ImageTransform
}

// Image returns the record's photo and transform.
func (r Record) Image() Image {
	img := Image{Photo: r.Photo}
	if r.PhotoTransform != nil {
		t := *r.PhotoTransform
		img.Transform = &t
	}
	return img
}

// Chronological returns a copy whose experiences and projects are ordered
// most recent first. Stored order is left untouched.
func (r Record) Chronological() Record {
	out := r
	out.Experiences = timeline.Rank(r.Experiences)
	out.Projects = timeline.Rank(r.Projects)
	return out
}

// ForWrite returns the record as sent to persistence: variants never carry
// their own photo, so it is stripped together with its transform.
func ForWrite(r Record) Record {
	out := r
	if !out.IsMaster {
		out.Photo = ""
		out.PhotoTransform = nil
	}
	return out
}
