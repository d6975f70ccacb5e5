package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/analytics"
	"github.com/nodalcv/server/pkg/auth"
	"github.com/nodalcv/server/pkg/cv"
	"github.com/nodalcv/server/pkg/editor"
	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/optimize"
	"github.com/nodalcv/server/pkg/profile"
	"github.com/nodalcv/server/pkg/security/jwt"
	"github.com/nodalcv/server/pkg/upload"
	"github.com/nodalcv/server/pkg/workflow"
)

// Recorder receives business metrics.
type Recorder interface {
	SettingWrite(field, outcome string)
	Import(ok bool)
}

type nopRecorder struct{}

func (nopRecorder) SettingWrite(string, string) {}
func (nopRecorder) Import(bool)                 {}

func orNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func ownerID(c *fiber.Ctx) uuid.UUID {
	s, _ := c.Locals(jwt.LocalUserID).(string)
	id, _ := uuid.Parse(s)
	return id
}

func userEmail(sess identity.Session) string {
	email, _ := sess.CurrentUserEmail()
	return email
}

// fail maps domain errors to HTTP statuses.
func fail(c *fiber.Ctx, err error) error {
	var verr *profile.ValidationError
	if errors.As(err, &verr) {
		return presenter.Validation(c, verr)
	}
	var herr *workflow.HTTPError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, workflow.ErrNoSession):
		return presenter.Error(c, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrEmailTaken):
		return presenter.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, editor.ErrPending):
		return presenter.Error(c, http.StatusConflict, "a change to this setting is already in progress")
	case errors.Is(err, analytics.ErrNotPublished):
		return presenter.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, upload.ErrTooLarge):
		return presenter.Error(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, upload.ErrUnsupportedFormat), errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, cv.ErrDeleteMaster), errors.Is(err, cv.ErrInvalidSlug),
		errors.Is(err, optimize.ErrInvalidInput), errors.Is(err, auth.ErrInvalidEmail):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		return presenter.Error(c, http.StatusBadRequest, fmt.Sprintf("password must have at least %d characters", auth.MinPasswordLength))
	case errors.Is(err, upload.ErrNotFound), errors.Is(err, cv.ErrNotFound), errors.Is(err, auth.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, optimize.ErrEmptyResult):
		return presenter.Error(c, http.StatusBadGateway, err.Error())
	case errors.As(err, &herr):
		slog.Warn("workflow backend error", "path", c.Path(), "status", herr.Status, "body", herr.Body)
		return presenter.Error(c, http.StatusBadGateway, "workflow backend unavailable")
	}
	slog.Error("request failed", "path", c.Path(), "err", err)
	return presenter.Error(c, http.StatusInternalServerError, "internal error")
}
