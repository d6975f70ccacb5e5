package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/health"
)

const readyTimeout = 3 * time.Second

type HealthHandler struct {
	svc     health.ReadinessUseCase
	started time.Time
}

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler {
	return &HealthHandler{svc: svc, started: time.Now()}
}

type livenessResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

type readinessResponse struct {
	Status string          `json:"status"`
	Checks []health.Result `json:"checks"`
}

// Health reports that the process is up.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} livenessResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, livenessResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

// Ready checks postgres, redis and the workflow backend.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), readyTimeout)
	defer cancel()
	resp := readinessResponse{Status: "ready", Checks: h.svc.Report(ctx)}
	for _, r := range resp.Checks {
		if !r.OK {
			resp.Status = "not_ready"
			return presenter.JSON(c, http.StatusServiceUnavailable, resp)
		}
	}
	return presenter.JSON(c, http.StatusOK, resp)
}
