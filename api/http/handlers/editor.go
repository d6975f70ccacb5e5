package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/cv"
	"github.com/nodalcv/server/pkg/editor"
	"github.com/nodalcv/server/pkg/identity"
	"github.com/nodalcv/server/pkg/metrics"
	"github.com/nodalcv/server/pkg/profile"
	"github.com/nodalcv/server/pkg/security/jwt"
)

// EditorHandler exposes the per-user editing session: the draft cv and the
// settings that are written optimistically.
type EditorHandler struct {
	profiles cv.UseCase
	sessions *editor.Store
	metrics  Recorder
}

func NewEditorHandler(profiles cv.UseCase, sessions *editor.Store, rec Recorder) *EditorHandler {
	return &EditorHandler{profiles: profiles, sessions: sessions, metrics: orNop(rec)}
}

type editorState struct {
	Loaded       bool                                  `json:"loaded"`
	CV           profile.Record                        `json:"cv"`
	Visibility   editor.Snapshot[bool]                 `json:"visibility"`
	Availability editor.Snapshot[profile.Availability] `json:"availability"`
	Notices      []editor.Notice                       `json:"notices"`
}

func stateOf(s *editor.Session) editorState {
	draft, loaded := s.Draft()
	return editorState{
		Loaded:       loaded,
		CV:           draft,
		Visibility:   s.Visibility.Snapshot(),
		Availability: s.Availability.Snapshot(),
		Notices:      s.Notices.List(),
	}
}

func (h *EditorHandler) session(c *fiber.Ctx) (*editor.Session, identity.Session) {
	sess := jwt.SessionFrom(c)
	return h.sessions.Get(userEmail(sess)), sess
}

type openRequest struct {
	Name string `json:"name"`
}

// Open loads a stored cv into the editor.
// @Summary  Open a cv in the editor
// @Tags     editor
// @Accept   json
// @Produce  json
// @Param    input body openRequest false "cv label, main by default"
// @Security BearerAuth
// @Success  200 {object} editorState
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /editor/open [post]
func (h *EditorHandler) Open(c *fiber.Ctx) error {
	var req openRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
	}
	es, sess := h.session(c)
	rec, err := h.profiles.Get(c.Context(), sess, req.Name)
	if err != nil {
		return fail(c, err)
	}
	es.Load(rec)
	return presenter.JSON(c, http.StatusOK, stateOf(es))
}

// State returns the current editing session.
// @Summary  Editor state
// @Tags     editor
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} editorState
// @Router   /editor [get]
func (h *EditorHandler) State(c *fiber.Ctx) error {
	es, _ := h.session(c)
	return presenter.JSON(c, http.StatusOK, stateOf(es))
}

// Draft replaces the draft. Visibility and availability keep their last
// committed values: they only change through their own endpoints.
// @Summary  Replace the draft
// @Tags     editor
// @Accept   json
// @Produce  json
// @Param    input body object true "cv in any accepted shape"
// @Security BearerAuth
// @Success  200 {object} editorState
// @Router   /editor/draft [put]
func (h *EditorHandler) Draft(c *fiber.Ctx) error {
	es, _ := h.session(c)
	current, loaded := es.Draft()
	rec := profile.Normalize(c.Body(),
		profile.AsMaster(current.IsMaster || !loaded),
		profile.InheritImage(current.Image()),
	)
	es.UpdateDraft(func(d *profile.Record) {
		rec.IsPublic = d.IsPublic
		rec.Availability = d.Availability
		rec.Slug = d.Slug
		rec.ID = d.ID
		if !rec.IsMaster && rec.Label == "" {
			rec.Label = d.Label
		}
		*d = rec
	})
	return presenter.JSON(c, http.StatusOK, stateOf(es))
}

type visibilityRequest struct {
	Value bool `json:"value"`
}

// Visibility toggles whether the draft's cv is public.
// @Summary     Set visibility
// @Description The value is shown at once; a failed write restores the previous one.
// @Tags        editor
// @Accept      json
// @Produce     json
// @Param       input body visibilityRequest true "new visibility"
// @Security    BearerAuth
// @Success     200 {object} editorState
// @Failure     409 {object} presenter.ErrorResponse
// @Failure     502 {object} editorState
// @Router      /editor/visibility [put]
func (h *EditorHandler) Visibility(c *fiber.Ctx) error {
	var req visibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	es, sess := h.session(c)
	draft, _ := es.Draft()
	err := es.Visibility.Set(c.Context(), req.Value, func(ctx context.Context, v bool) error {
		return h.profiles.SetVisibility(ctx, sess, draft, v)
	})
	return h.settled(c, es, "visibility", err)
}

type availabilityRequest struct {
	Value string `json:"value"`
}

// Availability sets the advertised notice period.
// @Summary  Set availability
// @Tags     editor
// @Accept   json
// @Produce  json
// @Param    input body availabilityRequest true "immediate, 1_month, 3_months or unavailable"
// @Security BearerAuth
// @Success  200 {object} editorState
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Failure  502 {object} editorState
// @Router   /editor/availability [put]
func (h *EditorHandler) Availability(c *fiber.Ctx) error {
	var req availabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, ok := profile.ParseAvailability(req.Value)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "unknown availability")
	}
	es, sess := h.session(c)
	draft, _ := es.Draft()
	err := es.Availability.Set(c.Context(), a, func(ctx context.Context, v profile.Availability) error {
		return h.profiles.SetAvailability(ctx, sess, draft, v)
	})
	return h.settled(c, es, "availability", err)
}

// settled answers an optimistic write: 409 while another write is in flight,
// 502 with the rolled back state when the write failed.
func (h *EditorHandler) settled(c *fiber.Ctx, es *editor.Session, field string, err error) error {
	switch {
	case err == nil:
		h.metrics.SettingWrite(field, metrics.OutcomeCommitted)
		return presenter.JSON(c, http.StatusOK, stateOf(es))
	case errors.Is(err, editor.ErrPending):
		h.metrics.SettingWrite(field, metrics.OutcomeRejected)
		return fail(c, err)
	case errors.Is(err, editor.ErrWriteFailed):
		h.metrics.SettingWrite(field, metrics.OutcomeRolledBack)
		slog.Warn("setting write rolled back", "field", field, "err", err)
		return presenter.JSON(c, http.StatusBadGateway, stateOf(es))
	}
	return fail(c, err)
}

// Save writes the draft.
// @Summary  Save the draft
// @Tags     editor
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} editorState
// @Failure  409 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /editor/save [post]
func (h *EditorHandler) Save(c *fiber.Ctx) error {
	return h.write(c, h.profiles.Save)
}

// Publish validates the draft, makes it public and writes it.
// @Summary  Publish the draft
// @Tags     editor
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} editorState
// @Failure  422 {object} presenter.ValidationResponse
// @Router   /editor/publish [post]
func (h *EditorHandler) Publish(c *fiber.Ctx) error {
	return h.write(c, h.profiles.Publish)
}

type writeFunc func(ctx context.Context, sess identity.Session, rec profile.Record) (profile.Record, error)

func (h *EditorHandler) write(c *fiber.Ctx, fn writeFunc) error {
	es, sess := h.session(c)
	draft, loaded := es.Draft()
	if !loaded {
		return presenter.Error(c, http.StatusConflict, "no cv is open in the editor")
	}
	saved, err := fn(c.Context(), sess, draft)
	if err != nil {
		return fail(c, err)
	}
	es.Load(saved)
	return presenter.JSON(c, http.StatusOK, stateOf(es))
}

// Notices lists the visible notices.
// @Summary  Editor notices
// @Tags     editor
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} editor.Notice
// @Router   /editor/notices [get]
func (h *EditorHandler) Notices(c *fiber.Ctx) error {
	es, _ := h.session(c)
	return presenter.JSON(c, http.StatusOK, es.Notices.List())
}

// DismissNotice hides a notice before its delay elapses.
// @Summary  Dismiss a notice
// @Tags     editor
// @Param    id path string true "notice id"
// @Security BearerAuth
// @Success  204
// @Router   /editor/notices/{id} [delete]
func (h *EditorHandler) DismissNotice(c *fiber.Ctx) error {
	es, _ := h.session(c)
	es.Notices.Dismiss(c.Params("id"))
	return c.SendStatus(http.StatusNoContent)
}
