package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nodalcv/server/api/http/presenter"
	"github.com/nodalcv/server/pkg/auth"
)

type AuthHandler struct {
	svc auth.UseCase
}

func NewAuthHandler(svc auth.UseCase) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type sessionResponse struct {
	accountResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newAccountResponse(a auth.Account) accountResponse {
	return accountResponse{ID: a.ID.String(), Email: a.Email, CreatedAt: a.CreatedAt, LastLoginAt: a.LastLoginAt}
}

func newSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{
		accountResponse: newAccountResponse(s.Account),
		Token:           s.Token.Value,
		ExpiresAt:       s.Token.ExpiresAt,
	}
}

// Register creates an account and signs it in.
// @Summary Register
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "email and password"
// @Success 201 {object} sessionResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	sess, err := h.svc.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, newSessionResponse(sess))
}

// Login exchanges credentials for an access token.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body credentialsRequest true "email and password"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	sess, err := h.svc.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, newSessionResponse(sess))
}

// Me returns the signed in account.
// @Summary  Current account
// @Tags     auth
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} accountResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	acc, err := h.svc.Me(c.Context(), ownerID(c))
	if errors.Is(err, auth.ErrNotFound) {
		// the token outlived its account
		return presenter.Error(c, http.StatusUnauthorized, "account no longer exists")
	}
	if err != nil {
		return fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, newAccountResponse(acc))
}

type passwordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

// ChangePassword replaces the password after checking the current one.
// @Summary  Change password
// @Tags     auth
// @Accept   json
// @Param    input body passwordRequest true "current and new password"
// @Security BearerAuth
// @Success  204
// @Failure  400 {object} presenter.ErrorResponse
// @Failure  401 {object} presenter.ErrorResponse
// @Router   /auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.svc.ChangePassword(c.Context(), ownerID(c), req.Current, req.Next); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
