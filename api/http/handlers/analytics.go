package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/analytics"
	"github.com/nodalcv/server/pkg/security/jwt"
)

type AnalyticsHandler struct {
	svc analytics.UseCase
}

func NewAnalyticsHandler(svc analytics.UseCase) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Summary aggregates the visits of a published cv.
// @Summary  Visit analytics
// @Tags     analytics
// @Produce  json
// @Param    name query string false "cv label, main by default"
// @Security BearerAuth
// @Success  200 {object} analytics.Summary
// @Failure  404 {object} presenter.ErrorResponse
// @Failure  409 {object} presenter.ErrorResponse
// @Router   /analytics [get]
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	s, err := h.svc.Summary(c.Context(), jwt.SessionFrom(c), c.Query("name"))
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, s)
}
