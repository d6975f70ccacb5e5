package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/analytics"
	"github.com/nodalcv/server/pkg/cv"
	"github.com/nodalcv/server/pkg/profile"
)

// PublicHandler serves published profiles without authentication.
type PublicHandler struct {
	profiles  cv.UseCase
	analytics analytics.UseCase
}

func NewPublicHandler(profiles cv.UseCase, stats analytics.UseCase) *PublicHandler {
	return &PublicHandler{profiles: profiles, analytics: stats}
}

// Get returns a published profile with its timeline sorted most recent first.
// @Summary Public profile
// @Tags    public
// @Produce json
// @Param   slug path string true "public slug"
// @Success 200 {object} profile.Record
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /public/{slug} [get]
func (h *PublicHandler) Get(c *fiber.Ctx) error {
	rec, err := h.profiles.Public(c.Context(), c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, publicView(rec))
}

// PDF exports a published profile. Private profiles are 404.
// @Summary Public profile as PDF
// @Tags    public
// @Produce application/pdf
// @Param   slug path string true "public slug"
// @Success 200 {file} binary
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /public/{slug}/pdf [get]
func (h *PublicHandler) PDF(c *fiber.Ctx) error {
	slug := c.Params("slug")
	data, ct, err := h.profiles.PublicPDF(c.Context(), slug)
	if err != nil {
		return fail(c, err)
	}
	return sendPDF(c, slug, data, ct)
}

type keywordRequest struct {
	Keyword string `json:"keyword"`
}

// Keyword records a keyword a visitor searched on the profile page.
// @Summary Track a keyword hit
// @Tags    public
// @Accept  json
// @Param   slug  path string         true "public slug"
// @Param   input body keywordRequest true "keyword"
// @Success 202
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /public/{slug}/keywords [post]
func (h *PublicHandler) Keyword(c *fiber.Ctx) error {
	var req keywordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.analytics.TrackKeyword(c.Context(), c.Params("slug"), req.Keyword); err != nil {
		if errors.Is(err, analytics.ErrInvalidEvent) {
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, err)
	}
	return c.SendStatus(http.StatusAccepted)
}

// publicView drops what only the owner should see.
func publicView(r profile.Record) profile.Record {
	r.ID = ""
	r.JobOffer = ""
	r.CoverLetter = ""
	return r
}
