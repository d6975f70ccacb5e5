package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/cv"
	"github.com/nodalcv/server/pkg/security/jwt"
)

type ProfilesHandler struct {
	svc cv.UseCase
}

func NewProfilesHandler(svc cv.UseCase) *ProfilesHandler {
	return &ProfilesHandler{svc: svc}
}

// List returns the main cv and its variants.
// @Summary  List cvs
// @Tags     profiles
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} profile.Record
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /profiles [get]
func (h *ProfilesHandler) List(c *fiber.Ctx) error {
	recs, err := h.svc.List(c.Context(), jwt.SessionFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, recs)
}

// Get returns one cv by label ("main" for the master) or slug.
// @Summary  Get a cv
// @Tags     profiles
// @Produce  json
// @Param    name path string true "label or slug"
// @Security BearerAuth
// @Success  200 {object} profile.Record
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profiles/{name} [get]
func (h *ProfilesHandler) Get(c *fiber.Ctx) error {
	rec, err := h.svc.Get(c.Context(), jwt.SessionFrom(c), param(c, "name"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, rec)
}

// Delete removes a variant. The main cv cannot be deleted.
// @Summary  Delete a cv variant
// @Tags     profiles
// @Param    name path string true "variant label"
// @Security BearerAuth
// @Success  204
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profiles/{name} [delete]
func (h *ProfilesHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), jwt.SessionFrom(c), param(c, "name")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// PDF exports a cv of the signed-in user.
// @Summary  Export a cv as PDF
// @Tags     profiles
// @Produce  application/pdf
// @Param    name path string true "label or slug"
// @Security BearerAuth
// @Success  200 {file} binary
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /profiles/{name}/pdf [get]
func (h *ProfilesHandler) PDF(c *fiber.Ctx) error {
	sess := jwt.SessionFrom(c)
	rec, err := h.svc.Get(c.Context(), sess, param(c, "name"))
	if err != nil {
		return fail(c, err)
	}
	if rec.Slug == "" {
		return presenter.Error(c, http.StatusConflict, "save the cv before exporting it")
	}
	data, ct, err := h.svc.PDF(c.Context(), sess, rec.Slug)
	if err != nil {
		return fail(c, err)
	}
	return sendPDF(c, rec.Slug, data, ct)
}

func sendPDF(c *fiber.Ctx, name string, data []byte, contentType string) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+url.PathEscape(name)+`.pdf"`)
	return c.Status(http.StatusOK).Send(data)
}

// param returns an unescaped route parameter; labels may contain spaces.
func param(c *fiber.Ctx, key string) string {
	v := c.Params(key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
