package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodalcv/server/pkg/auth"
	"github.com/nodalcv/server/pkg/security/jwt"
)

type fakeAuth struct {
	err error
	id  uuid.UUID
}

func (f *fakeAuth) session(email string) auth.Session {
	return auth.Session{
		Account: auth.Account{ID: f.id, Email: email},
		Token:   auth.Token{Value: "tok", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func (f *fakeAuth) Register(_ context.Context, email, _ string) (auth.Session, error) {
	return f.session(email), f.err
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (auth.Session, error) {
	return f.session(email), f.err
}

func (f *fakeAuth) Me(_ context.Context, id uuid.UUID) (auth.Account, error) {
	if id != f.id {
		return auth.Account{}, auth.ErrNotFound
	}
	return auth.Account{ID: id, Email: "alex@example.fr"}, nil
}

func (f *fakeAuth) ChangePassword(context.Context, uuid.UUID, string, string) error { return f.err }

func newAuthApp(f *fakeAuth, subject string) *fiber.App {
	app := fiber.New()
	h := NewAuthHandler(f)
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	signedIn := func(c *fiber.Ctx) error {
		c.Locals(jwt.LocalUserID, subject)
		return c.Next()
	}
	app.Get("/auth/me", signedIn, h.Me)
	app.Put("/auth/password", signedIn, h.ChangePassword)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		path   string
		status int
	}{
		{"registered", nil, "/auth/register", http.StatusCreated},
		{"email taken", auth.ErrEmailTaken, "/auth/register", http.StatusConflict},
		{"weak password", auth.ErrWeakPassword, "/auth/register", http.StatusBadRequest},
		{"bad email", auth.ErrInvalidEmail, "/auth/register", http.StatusBadRequest},
		{"logged in", nil, "/auth/login", http.StatusOK},
		{"bad credentials", auth.ErrInvalidCredentials, "/auth/login", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthApp(&fakeAuth{err: tt.err, id: uuid.New()}, "")
			resp := send(t, app, http.MethodPost, tt.path, `{"email": "alex@example.fr", "password": "correct-horse"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthSessionBody(t *testing.T) {
	app := newAuthApp(&fakeAuth{id: uuid.New()}, "")
	resp := send(t, app, http.MethodPost, "/auth/login", `{"email": "alex@example.fr", "password": "x"}`)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "tok", body["token"])
	assert.Equal(t, "alex@example.fr", body["email"])
	assert.Equal(t, "2030-01-01T00:00:00Z", body["expiresAt"])
}

func TestAuthMe(t *testing.T) {
	id := uuid.New()
	resp := send(t, newAuthApp(&fakeAuth{id: id}, id.String()), http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, newAuthApp(&fakeAuth{id: id}, uuid.NewString()), http.MethodGet, "/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, newAuthApp(&fakeAuth{id: id, err: auth.ErrInvalidCredentials}, id.String()),
		http.MethodPut, "/auth/password", `{"current": "a", "next": "b"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
