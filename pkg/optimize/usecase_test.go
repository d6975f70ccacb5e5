package optimize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/profile"
	"github.com/nodalcv/server/pkg/workflow"
)

type fakeProfiles struct {
	recs  map[string]profile.Record
	saved []profile.Record
}

func (f *fakeProfiles) Get(_ context.Context, _ identity.Session, name string) (profile.Record, error) {
	if name == "" {
		name = profile.MainLabel
	}
	return f.recs[name], nil
}

func (f *fakeProfiles) Save(_ context.Context, _ identity.Session, rec profile.Record) (profile.Record, error) {
	rec.Slug = "alex-" + rec.Label
	f.saved = append(f.saved, rec)
	return rec, nil
}

type fixedExcerpts string

func (e fixedExcerpts) LatestExcerpt(context.Context, uuid.UUID) string { return string(e) }

var sess = identity.NewBearerSession("alex@example.fr", "tok")

func master() profile.Record {
	return profile.Record{
		IsMaster: true,
		Label:    profile.MainLabel,
		Person:   profile.Person{FirstName: "Alex"},
		Photo:    "photo-data",
		Skills:   profile.Skills{Hard: []string{"Golang", "PostgreSQL", "Figma"}},
	}
}

// workflowServer answers like the workflow backend does, with one-element arrays.
func workflowServer(t *testing.T, seen map[string]map[string]any) *workflow.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		seen[r.URL.Path] = body
		switch r.URL.Path {
		case "/webhook/optimize/description":
			_, _ = w.Write([]byte(`[{"optimizedDescription": "Shipped a Go API"}]`))
		case "/webhook/optimize/offer":
			_, _ = w.Write([]byte(`{"data": {"personne": {"prenom": "Alex"}, "resume": "Backend dev", "photo": "own", "cv_name": "ignored"}}`))
		case "/webhook/optimize/cover-letter":
			_, _ = w.Write([]byte(`{"coverLetter": "Madame, Monsieur"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return workflow.New(srv.URL, "", 5*time.Second)
}

func TestDescriptionUsesLatestExcerpt(t *testing.T) {
	seen := map[string]map[string]any{}
	svc := NewService(NewWorkflowBackend(workflowServer(t, seen)), &fakeProfiles{}, fixedExcerpts("imported text"), nil)

	out, err := svc.Description(context.Background(), sess, uuid.New(), DescriptionInput{Description: "did go", TargetJob: "SRE"})
	require.NoError(t, err)
	assert.Equal(t, "Shipped a Go API", out)

	body := seen["/webhook/optimize/description"]
	assert.Equal(t, "imported text", body["resume_excerpt"])
	assert.Equal(t, "SRE", body["target_job"])
	assert.Equal(t, "alex@example.fr", body["email"])

	_, err = svc.Description(context.Background(), sess, uuid.New(), DescriptionInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOfferBuildsVariant(t *testing.T) {
	seen := map[string]map[string]any{}
	profiles := &fakeProfiles{recs: map[string]profile.Record{profile.MainLabel: master()}}
	svc := NewService(NewWorkflowBackend(workflowServer(t, seen)), profiles, nil, nil)

	offer := "Nous cherchons un développeur Go avec Kubernetes et PostgreSQL."
	res, err := svc.Offer(context.Background(), sess, OfferInput{Target: "Doctolib", JobOffer: offer, Save: true})
	require.NoError(t, err)

	assert.False(t, res.CV.IsMaster)
	assert.Equal(t, "Doctolib", res.CV.Label)
	assert.Equal(t, offer, res.CV.JobOffer)
	assert.Equal(t, "photo-data", res.CV.Photo)
	assert.Equal(t, "alex-Doctolib", res.CV.Slug)
	require.Len(t, profiles.saved, 1)

	cv := seen["/webhook/optimize/offer"]["cv"].(map[string]any)
	assert.Equal(t, "photo-data", cv["photo"])
}

func TestOfferRejects(t *testing.T) {
	svc := NewService(NewWorkflowBackend(workflow.New("http://127.0.0.1:1", "", time.Second)), &fakeProfiles{}, nil, nil)
	_, err := svc.Offer(context.Background(), sess, OfferInput{Target: "main", JobOffer: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Offer(context.Background(), sess, OfferInput{Target: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCoverLetter(t *testing.T) {
	seen := map[string]map[string]any{}
	profiles := &fakeProfiles{recs: map[string]profile.Record{profile.MainLabel: master()}}
	svc := NewService(NewWorkflowBackend(workflowServer(t, seen)), profiles, nil, nil)

	letter, err := svc.CoverLetter(context.Background(), sess, CoverLetterInput{JobOffer: "Go dev", Company: "Acme", Save: true})
	require.NoError(t, err)
	assert.Equal(t, "Madame, Monsieur", letter)
	require.Len(t, profiles.saved, 1)
	assert.Equal(t, "Madame, Monsieur", profiles.saved[0].CoverLetter)
	assert.Equal(t, "Acme", seen["/webhook/optimize/cover-letter"]["entreprise"])
}

type fakeModel struct{ reply string }

func (f fakeModel) Ask(context.Context, string, string) (string, error) { return f.reply, nil }

func TestLLMBackendEmptyAnswer(t *testing.T) {
	profiles := &fakeProfiles{recs: map[string]profile.Record{profile.MainLabel: master()}}

	svc := NewService(NewLLMBackend(fakeModel{reply: "   "}), profiles, nil, nil)
	_, err := svc.Description(context.Background(), sess, uuid.Nil, DescriptionInput{Description: "x"})
	assert.ErrorIs(t, err, ErrEmptyResult)

	_, err = svc.Offer(context.Background(), sess, OfferInput{Target: "Data", JobOffer: "x"})
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestLLMBackendOffer(t *testing.T) {
	profiles := &fakeProfiles{recs: map[string]profile.Record{profile.MainLabel: master()}}
	reply := "Voici :\n```json\n{\"personne\": {\"prenom\": \"Alex\"}, \"resume\": \"Data engineer\"}\n```"
	svc := NewService(NewLLMBackend(fakeModel{reply: reply}), profiles, nil, nil)

	res, err := svc.Offer(context.Background(), sess, OfferInput{Target: "Data", JobOffer: "Python et SQL"})
	require.NoError(t, err)
	assert.Equal(t, "Data engineer", res.CV.Summary)
	assert.Empty(t, profiles.saved)
	assert.ElementsMatch(t, []string{"python", "sql"}, res.Match.Missing)
}

func TestMatchOffer(t *testing.T) {
	m := MatchOffer(master(), "Stack Go, Postgres, Kubernetes. Anglais courant.")
	assert.Equal(t, []string{"Golang", "PostgreSQL"}, m.Matched)
	assert.Equal(t, []string{"kubernetes", "anglais"}, m.Missing)
	assert.InDelta(t, 0.5, m.Score, 1e-9)

	empty := MatchOffer(master(), "")
	assert.Empty(t, empty.Matched)
	assert.Zero(t, empty.Score)
}
