package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

type SessionHandler struct {
	session ports.SessionManager
	auth    *rentalapi.AuthAPI
	log     zerolog.Logger
}

func NewSessionHandler(session ports.SessionManager, auth *rentalapi.AuthAPI, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{session: session, auth: auth, log: log}
}

type loginResponse struct {
	Success  bool             `json:"success"`
	User     *domain.Identity `json:"user"`
	IsAdmin  bool             `json:"isAdmin"`
	Redirect string           `json:"redirect"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// Login signs the user in and tells the view where to go next.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        from  query     string              false  "Page that required the login"
// @Param        body  body      domain.Credentials  true   "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req domain.Credentials
	if err := bindValid(c, &req); err != nil {
		return err
	}

	id, err := h.session.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Success:  true,
		User:     id,
		IsAdmin:  id.IsAdmin(),
		Redirect: redirectTarget(c.QueryParam("from")),
	})
}

// Signup registers a new account. The user signs in separately afterwards.
//
// @Summary      Register a new user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.SignupRequest  true  "User registration details"
// @Success      201   {object}  rentalapi.Result
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /signup [post]
func (h *SessionHandler) Signup(c echo.Context) error {
	var req domain.SignupRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Signup(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusCreated, res)
}

// Logout ends the session. It always succeeds from the user's point of view.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.SessionState
// @Router       /logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.session.Logout(c.Request().Context()); err != nil {
		h.log.Error().Err(err).Msg("session storage not cleared on logout")
	}
	return c.JSON(http.StatusOK, h.session.State())
}

// Session returns the current session state.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.SessionState
// @Router       /session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.session.State())
}

// DismissError clears the last session error shown to the user.
//
// @Summary      Dismiss session error
// @Tags         session
// @Success      204
// @Router       /session/error [delete]
func (h *SessionHandler) DismissError(c echo.Context) error {
	h.session.ClearError()
	return c.NoContent(http.StatusNoContent)
}

// ForgotPassword asks the backend to send a password reset email.
//
// @Summary      Forgot password
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  rentalapi.Result
// @Router       /password/forgot [post]
func (h *SessionHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.auth.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// ResetPassword sets a new password from a reset token.
//
// @Summary      Reset password
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  rentalapi.Result
// @Router       /password/reset [post]
func (h *SessionHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// redirectTarget only follows local paths.
func redirectTarget(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/login") {
		return "/"
	}
	return from
}
