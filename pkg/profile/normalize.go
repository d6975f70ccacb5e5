package profile

// Option tunes how a single payload is normalized.
type Option func(*options)

type options struct {
	masterHint *bool
	force      *bool
	index      int
	hasIndex   bool
	image      *Image
}

// WithMasterHint is consulted when the payload carries no master flag.
func WithMasterHint(isMaster bool) Option {
	return func(o *options) { o.masterHint = &isMaster }
}

// AtIndex gives the payload's position in its collection; the first
// element is the master when nothing else decides.
func AtIndex(i int) Option {
	return func(o *options) { o.index, o.hasIndex = i, true }
}

// AsMaster overrides every other master rule.
func AsMaster(isMaster bool) Option {
	return func(o *options) { o.force = &isMaster }
}

// InheritImage supplies the master's photo for non-master records.
func InheritImage(img Image) Option {
	return func(o *options) { o.image = &img }
}

// Normalize builds a fully defaulted Record from a collaborator payload of
// unknown shape. It never fails: anything missing becomes an empty value.
func Normalize(raw any, opts ...Option) Record {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	wrapper, content := unwrap(raw)
	meta := []map[string]any{wrapper, content}
	root := []map[string]any{content}

	person := asMap(content["personne"])
	contact := asMap(person["contact"])
	contactPath := []map[string]any{contact, person, content}

	rec := Record{
		ID: pick(meta, "id", "_id"),
		Person: Person{
			FirstName: pick([]map[string]any{person, content}, "prenom"),
			LastName:  pick([]map[string]any{person, content}, "nom"),
			Title:     pick([]map[string]any{person, content}, "titre", "titre_professionnel"),
			Contact: Contact{
				Email:    pick(contactPath, "email"),
				Phone:    pick(contactPath, "telephone", "phone"),
				LinkedIn: pick(contactPath, "linkedin"),
				City:     pick(contactPath, "ville", "city"),
			},
		},
		Summary:        pick(root, "resume", "summary"),
		Experiences:    experiences(content),
		Projects:       projects(content),
		Education:      education(content),
		Certifications: certifications(content),
		Skills:         skills(content),
		Availability:   AvailabilityImmediate,
		Slug:           pick(meta, "slug"),
		JobOffer:       pick(meta, "job_offer", "offre"),
		CoverLetter:    pick(meta, "cover_letter", "lettre_motivation"),
	}
	if v, ok := flagIn(meta, "is_public", "isPublic"); ok {
		rec.IsPublic = v
	}
	if a, ok := ParseAvailability(pick(meta, "disponibilite", "availability")); ok {
		rec.Availability = a
	}

	rec.IsMaster = o.isMaster(meta)
	if rec.IsMaster {
		rec.Label = MainLabel
		rec.Photo = pick(root, "photo")
		rec.PhotoTransform = transform(content["photo_transform"])
	} else {
		rec.Label = pick(meta, "cv_name", "cvName", "optimized_for", "optimizedFor")
		if o.image != nil {
			img := *o.image
			rec.Photo = img.Photo
			if img.Transform != nil {
				t := *img.Transform
				rec.PhotoTransform = &t
			}
		}
	}
	return rec
}

func (o options) isMaster(meta []map[string]any) bool {
	if o.force != nil {
		return *o.force
	}
	if v, ok := explicitMaster(meta); ok {
		return v
	}
	if o.masterHint != nil {
		return *o.masterHint
	}
	return o.hasIndex && o.index == 0
}

// explicitMaster prefers is_master over the legacy is_main alias.
func explicitMaster(meta []map[string]any) (bool, bool) {
	if v, ok := flagIn(meta, "is_master", "isMaster"); ok {
		return v, true
	}
	return flagIn(meta, "is_main", "isMain")
}

func experiences(content map[string]any) []Experience {
	out := []Experience{}
	for _, it := range items(content, "experiences", "experience") {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		ms := []map[string]any{m}
		out = append(out, Experience{
			Title:       pick(ms, "poste", "titre", "title"),
			Company:     pick(ms, "entreprise", "company"),
			Location:    pick(ms, "lieu", "location"),
			Start:       pick(ms, "periode_debut"),
			End:         pick(ms, "periode_fin"),
			Description: pick(ms, "description"),
		})
	}
	return out
}

func projects(content map[string]any) []Project {
	out := []Project{}
	for _, it := range items(content, "projets", "projects") {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		ms := []map[string]any{m}
		out = append(out, Project{
			Name:         pick(ms, "nom", "name", "titre"),
			Description:  pick(ms, "description"),
			Technologies: strList(m["technologies"]),
			Link:         pick(ms, "lien", "url"),
			Start:        pick(ms, "periode_debut"),
			End:          pick(ms, "periode_fin"),
		})
	}
	return out
}

func education(content map[string]any) []Education {
	out := []Education{}
	for _, it := range items(content, "formations", "education") {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		ms := []map[string]any{m}
		out = append(out, Education{
			Degree:      pick(ms, "diplome", "degree"),
			School:      pick(ms, "etablissement", "ecole", "school"),
			Start:       pick(ms, "periode_debut"),
			End:         pick(ms, "periode_fin"),
			Description: pick(ms, "description"),
		})
	}
	return out
}

func certifications(content map[string]any) []Certification {
	out := []Certification{}
	for _, it := range items(content, "certifications") {
		switch v := it.(type) {
		case string:
			if v != "" {
				out = append(out, Certification{Name: v})
			}
		case map[string]any:
			ms := []map[string]any{v}
			out = append(out, Certification{
				Name:   pick(ms, "nom", "name"),
				Issuer: pick(ms, "organisme", "issuer"),
				Date:   pick(ms, "date"),
				Link:   pick(ms, "lien", "url"),
			})
		}
	}
	return out
}

func skills(content map[string]any) Skills {
	c := asMap(content["competences"])
	langs := c["langues"]
	if _, ok := langs.([]any); !ok {
		langs = c["languages"]
	}
	return Skills{
		Hard:      strList(c["hard_skills"]),
		Soft:      strList(c["soft_skills"]),
		Languages: strList(langs),
	}
}

func transform(v any) *ImageTransform {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	t := &ImageTransform{Scale: 1}
	if x, ok := num(m["x"]); ok {
		t.X = x
	}
	if y, ok := num(m["y"]); ok {
		t.Y = y
	}
	if s, ok := num(m["scale"]); ok && s > 0 {
		t.Scale = s
	}
	return t
}
