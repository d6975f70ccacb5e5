package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/optimize"
	"github.com/nodalcv/server/pkg/security/jwt"
)

type OptimizeHandler struct {
	svc optimize.UseCase
}

func NewOptimizeHandler(svc optimize.UseCase) *OptimizeHandler {
	return &OptimizeHandler{svc: svc}
}

type textResponse struct {
	Text string `json:"text"`
}

// Description rewrites one experience description.
// @Summary  Rewrite a description
// @Tags     optimize
// @Accept   json
// @Produce  json
// @Param    input body optimize.DescriptionInput true "description and context"
// @Security BearerAuth
// @Success  200 {object} textResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /optimize/description [post]
func (h *OptimizeHandler) Description(c *fiber.Ctx) error {
	var in optimize.DescriptionInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	out, err := h.svc.Description(c.Context(), jwt.SessionFrom(c), ownerID(c), in)
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, textResponse{Text: out})
}

// Offer builds a variant of the main cv targeted at a job offer.
// @Summary  Build an offer variant
// @Tags     optimize
// @Accept   json
// @Produce  json
// @Param    input body optimize.OfferInput true "target name and offer text"
// @Security BearerAuth
// @Success  200 {object} optimize.OfferResult
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /optimize/offer [post]
func (h *OptimizeHandler) Offer(c *fiber.Ctx) error {
	var in optimize.OfferInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	res, err := h.svc.Offer(c.Context(), jwt.SessionFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, res)
}

// CoverLetter writes a cover letter for an offer.
// @Summary  Write a cover letter
// @Tags     optimize
// @Accept   json
// @Produce  json
// @Param    input body optimize.CoverLetterInput true "offer and cv label"
// @Security BearerAuth
// @Success  200 {object} textResponse
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  502 {object} presenter.ErrorResponse
// @Router   /optimize/cover-letter [post]
func (h *OptimizeHandler) CoverLetter(c *fiber.Ctx) error {
	var in optimize.CoverLetterInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	out, err := h.svc.CoverLetter(c.Context(), jwt.SessionFrom(c), in)
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, textResponse{Text: out})
}
