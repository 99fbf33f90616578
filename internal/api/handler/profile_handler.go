package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

const msgEditSubmitted = "Your changes have been submitted for admin approval."

type ProfileHandler struct {
	session  ports.SessionManager
	users    *rentalapi.UserAPI
	edits    ports.EditRequests
	log      zerolog.Logger
	maxBytes int64
}

func NewProfileHandler(session ports.SessionManager, users *rentalapi.UserAPI, edits ports.EditRequests, maxBytes int64, log zerolog.Logger) *ProfileHandler {
	if maxBytes <= 0 {
		maxBytes = rentalapi.DefaultMaxUploadBytes
	}
	return &ProfileHandler{session: session, users: users, edits: edits, log: log, maxBytes: maxBytes}
}

type profileView struct {
	Success bool             `json:"success"`
	User    *domain.Identity `json:"user"`
	Profile *domain.User     `json:"profile,omitempty"`
}

type profileUpdateView struct {
	Success         bool                `json:"success"`
	PendingApproval bool                `json:"pendingApproval"`
	Message         string              `json:"message,omitempty"`
	User            *domain.Identity    `json:"user,omitempty"`
	EditRequest     *domain.EditRequest `json:"editRequest,omitempty"`
}

// Get fetches the profile and refreshes the session identity with it.
//
// @Summary      My profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  profileView
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	epoch := h.session.State().Epoch
	res, err := h.users.Profile(ctx)
	if err != nil {
		return err
	}

	id, err := h.session.ApplyProfile(ctx, epoch, res.Data)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) || errors.Is(err, domain.ErrSessionChanged) {
			return err
		}
		h.log.Warn().Err(err).Msg("profile not applied to session")
		id = h.session.State().Identity
	}

	var profile domain.User
	if err := res.Decode(&profile); err != nil {
		h.log.Debug().Err(err).Msg("profile body not decodable")
		return c.JSON(http.StatusOK, profileView{Success: true, User: id})
	}
	return c.JSON(http.StatusOK, profileView{Success: true, User: id, Profile: &profile})
}

// Update changes the profile. Administrators update it directly; everyone
// else files an edit request for an administrator to approve.
//
// @Summary      Update my profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProfileUpdate  true  "Changed fields"
// @Success      200   {object}  profileUpdateView
// @Success      202   {object}  profileUpdateView
// @Failure      400   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	var req domain.ProfileUpdate
	if err := bindValid(c, &req); err != nil {
		return err
	}
	user, err := currentIdentity(h.session)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if user.IsAdmin() {
		id, err := h.updateDirect(ctx, req)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, profileUpdateView{Success: true, User: id})
	}

	edit, err := h.edits.Submit(ctx, user, req, h.original(ctx, user))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, profileUpdateView{
		Success:         true,
		PendingApproval: true,
		Message:         msgEditSubmitted,
		EditRequest:     edit,
	})
}

// updateDirect saves the profile and applies the result to the session. When
// the update response carries no identity the profile is fetched again.
func (h *ProfileHandler) updateDirect(ctx context.Context, req domain.ProfileUpdate) (*domain.Identity, error) {
	epoch := h.session.State().Epoch
	res, err := h.users.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	id, err := h.session.ApplyProfile(ctx, epoch, res.Data)
	if !errors.Is(err, domain.ErrInvalidIdentity) {
		return id, err
	}

	res, err = h.users.Profile(ctx)
	if err != nil {
		return nil, err
	}
	return h.session.ApplyProfile(ctx, epoch, res.Data)
}

// original returns the current values of the editable fields. The session
// identity is used when the profile cannot be fetched.
func (h *ProfileHandler) original(ctx context.Context, user *domain.Identity) map[string]string {
	fallback := domain.ProfileUpdate{Username: user.Username, Email: user.Email}.Fields()

	res, err := h.users.Profile(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("profile fetch failed, diffing against session identity")
		return fallback
	}
	var p domain.User
	if err := res.Decode(&p); err != nil || p.Username == "" {
		return fallback
	}
	return domain.ProfileUpdate{
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
	}.Fields()
}

// EditRequest returns the user's latest edit request.
//
// @Summary      My edit request
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.EditRequest
// @Failure      404  {object}  map[string]any
// @Router       /profile/edit-request [get]
func (h *ProfileHandler) EditRequest(c echo.Context) error {
	user, err := currentIdentity(h.session)
	if err != nil {
		return err
	}
	req, err := h.edits.Current(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

// CancelEditRequest withdraws the user's pending edit request.
//
// @Summary      Cancel my edit request
// @Tags         profile
// @Success      204
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /profile/edit-request [delete]
func (h *ProfileHandler) CancelEditRequest(c echo.Context) error {
	user, err := currentIdentity(h.session)
	if err != nil {
		return err
	}
	if err := h.edits.Cancel(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePassword changes the user's password.
//
// @Summary      Change password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      domain.PasswordChange  true  "Current and new password"
// @Success      200   {object}  rentalapi.Result
// @Router       /profile/password [put]
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	var req domain.PasswordChange
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.users.ChangePassword(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// UploadAvatar replaces the profile picture.
//
// @Summary      Upload avatar
// @Tags         profile
// @Accept       mpfd
// @Produce      json
// @Param        avatar  formData  file  true  "Image (jpeg, png, gif; max 5MB)"
// @Success      200     {object}  rentalapi.Result
// @Failure      422     {object}  map[string]any
// @Router       /profile/avatar [post]
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	img, err := readUpload(c, "avatar", h.maxBytes)
	if err != nil {
		return err
	}
	res, err := h.users.UploadAvatar(c.Request().Context(), img)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}
