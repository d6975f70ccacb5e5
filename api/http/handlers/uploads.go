package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/editor"
	"github.com/nodalcv/server/pkg/security/jwt"
	"github.com/nodalcv/server/pkg/upload"
)

type UploadsHandler struct {
	svc      upload.UseCase
	sessions *editor.Store
	maxBytes int64
	metrics  Recorder
}

func NewUploadsHandler(svc upload.UseCase, sessions *editor.Store, maxBytes int64, rec Recorder) *UploadsHandler {
	if maxBytes <= 0 {
		maxBytes = 15 << 20
	}
	return &UploadsHandler{svc: svc, sessions: sessions, maxBytes: maxBytes, metrics: orNop(rec)}
}

// Upload imports a résumé and opens the parsed record in the editor.
// @Summary     Import a résumé
// @Description Accepts PDF or DOCX, stores it, has it parsed and returns the normalized cv.
// @Tags        uploads
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "résumé (PDF/DOCX)"
// @Security    BearerAuth
// @Success     201 {object} upload.Result
// @Failure     400 {object} presenter.ErrorResponse
// @Failure     413 {object} presenter.ErrorResponse
// @Failure     502 {object} presenter.ErrorResponse
// @Router      /uploads [post]
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (pdf or docx)")
	}
	if !upload.Supported(fh.Filename) {
		return fail(c, upload.ErrUnsupportedFormat)
	}
	if fh.Size > h.maxBytes {
		return fail(c, upload.ErrTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to read uploaded file")
	}

	sess := jwt.SessionFrom(c)
	res, err := h.svc.Import(c.Context(), sess, ownerID(c), upload.File{
		Filename: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	})
	h.metrics.Import(err == nil)
	if err != nil {
		return fail(c, err)
	}
	h.sessions.Get(userEmail(sess)).Load(res.Record)
	return presenter.JSON(c, http.StatusCreated, res)
}

// List returns the user's uploads, newest first.
// @Summary  List uploads
// @Tags     uploads
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} upload.Upload
// @Router   /uploads [get]
func (h *UploadsHandler) List(c *fiber.Ctx) error {
	items, err := h.svc.List(c.Context(), ownerID(c))
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Delete removes an upload and its stored file.
// @Summary  Delete an upload
// @Tags     uploads
// @Param    id path string true "upload id (UUID)"
// @Security BearerAuth
// @Success  204
// @Failure  404 {object} presenter.ErrorResponse
// @Router   /uploads/{id} [delete]
func (h *UploadsHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Context(), ownerID(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
