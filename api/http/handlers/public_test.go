package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodalcv/server/pkg/cv"
	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/workflow"
)

type stubBackend struct {
	mu      sync.Mutex
	public  any
	tracked int
	pdfs    int
}

func (b *stubBackend) ListProfiles(context.Context, identity.Session) (any, error) { return nil, nil }

func (b *stubBackend) PublicProfile(context.Context, string) (any, error) { return b.public, nil }

func (b *stubBackend) SaveProfile(_ context.Context, _ identity.Session, rec any) (any, error) {
	return rec, nil
}

func (b *stubBackend) DeleteProfile(context.Context, identity.Session, string) error { return nil }

func (b *stubBackend) UpdateSetting(context.Context, identity.Session, workflow.SettingRequest) error {
	return nil
}

func (b *stubBackend) TrackEvent(context.Context, workflow.TrackRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tracked++
	return nil
}

func (b *stubBackend) ExportPDF(context.Context, identity.Session, string) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pdfs++
	return []byte("%PDF"), "application/pdf", nil
}

func newPublicApp(b *stubBackend) *fiber.App {
	app := fiber.New()
	h := NewPublicHandler(cv.NewService(b, nil, 0, nil), nil)
	app.Get("/public/:slug", h.Get)
	app.Get("/public/:slug/pdf", h.PDF)
	return app
}

func TestPublicHidesPrivateFields(t *testing.T) {
	b := &stubBackend{public: map[string]any{
		"is_public": true,
		"slug":      "alex",
		"job_offer": "secret offer",
		"data":      map[string]any{"personne": map[string]any{"prenom": "Alex"}},
	}}
	app := newPublicApp(b)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/public/alex", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var rec map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.NotContains(t, rec, "job_offer")
	assert.Equal(t, 1, b.tracked)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/public/alex/pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestPublicPrivateProfileIsNotFound(t *testing.T) {
	b := &stubBackend{public: map[string]any{
		"is_public": false,
		"slug":      "alex",
		"data":      map[string]any{"personne": map[string]any{"prenom": "Alex"}},
	}}
	app := newPublicApp(b)

	for _, path := range []string{"/public/alex", "/public/alex/pdf"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	assert.Zero(t, b.tracked)
	assert.Zero(t, b.pdfs)
}
