package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodalcv/server/pkg/auth"
)

func newApp(iss *Issuer) *fiber.App {
	app := fiber.New()
	app.Use(NewAuthMiddleware(iss))
	app.Get("/me", func(c *fiber.Ctx) error {
		email, _ := SessionFrom(c).CurrentUserEmail()
		tok, _ := SessionFrom(c).Token(c.Context())
		return c.JSON(fiber.Map{"email": email, "id": c.Locals(LocalUserID), "forwarded": tok != ""})
	})
	return app
}

func issue(t *testing.T, iss *Issuer, email string) string {
	t.Helper()
	tok, err := iss.Issue(context.Background(), auth.Account{ID: uuid.New(), Email: email})
	require.NoError(t, err)
	return tok.Value
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret", "nodalcv", time.Hour)
	tok := issue(t, iss, "alex@example.fr")

	tests := []struct {
		name   string
		header string
		app    *fiber.App
		status int
	}{
		{"bearer", "Bearer " + tok, newApp(iss), http.StatusOK},
		{"bare token", tok, newApp(iss), http.StatusOK},
		{"lowercase scheme", "bearer " + tok, newApp(iss), http.StatusOK},
		{"missing", "", newApp(iss), http.StatusUnauthorized},
		{"wrong secret", "Bearer " + tok, newApp(NewIssuer("other", "nodalcv", time.Hour)), http.StatusUnauthorized},
		{"wrong issuer", "Bearer " + tok, newApp(NewIssuer("secret", "elsewhere", time.Hour)), http.StatusUnauthorized},
		{"any issuer", "Bearer " + tok, newApp(NewIssuer("secret", "", time.Hour)), http.StatusOK},
		{"garbage", "Bearer nope", newApp(iss), http.StatusUnauthorized},
		{"no email", "Bearer " + issue(t, iss, ""), newApp(iss), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := tt.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", "nodalcv", time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return now }

	id := uuid.New()
	tok, err := iss.Issue(context.Background(), auth.Account{ID: id, Email: "alex@example.fr"})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)

	claims, err := iss.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "alex@example.fr", claims.Email)

	iss.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = iss.Parse(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
