package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/core/service"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

type AdminHandler struct {
	api       *rentalapi.Client
	edits     ports.EditRequests
	dashboard *service.DashboardService
	log       zerolog.Logger
}

func NewAdminHandler(api *rentalapi.Client, edits ports.EditRequests, dashboard *service.DashboardService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{api: api, edits: edits, dashboard: dashboard, log: log}
}

type dashboardView struct {
	Success  bool                       `json:"success"`
	Complete bool                       `json:"complete"`
	Sections map[string]json.RawMessage `json:"sections"`
	Errors   map[string]string          `json:"errors,omitempty"`
}

type rolesRequest struct {
	Roles []string `json:"roles" validate:"required,min=1"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Dashboard loads every analytics section concurrently. Sections that fail
// are listed under errors; the rest still render.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Param        period  query     string  false  "Reporting period (e.g. week, month, year)"
// @Success      200     {object}  dashboardView
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	report, err := h.dashboard.Load(c.Request().Context(), h.sections(c.QueryParam("period")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardView{
		Success:  true,
		Complete: report.Complete(),
		Sections: report.Sections,
		Errors:   report.Errors,
	})
}

func (h *AdminHandler) sections(period string) []ports.DashboardSection {
	a := h.api.Analytics
	withPeriod := func(fn func(context.Context, string) (*rentalapi.Result, error)) func(context.Context) (*rentalapi.Result, error) {
		return func(ctx context.Context) (*rentalapi.Result, error) { return fn(ctx, period) }
	}
	return []ports.DashboardSection{
		section("stats", a.Dashboard),
		section("revenue", withPeriod(a.Revenue)),
		section("bookings", withPeriod(a.Bookings)),
		section("users", withPeriod(a.Users)),
		section("carUtilization", a.CarUtilization),
		section("popularCars", a.PopularCars),
		section("userStats", h.api.Users.Stats),
		section("paymentStats", h.api.Payments.Stats),
	}
}

func section(name string, fn func(context.Context) (*rentalapi.Result, error)) ports.DashboardSection {
	return ports.DashboardSection{
		Name: name,
		Fetch: func(ctx context.Context) (json.RawMessage, error) {
			res, err := fn(ctx)
			if err != nil {
				return nil, err
			}
			return res.Data, nil
		},
	}
}

// Users lists every account.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listView[domain.User]
// @Router       /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	res, err := h.api.Users.List(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapUsers)
}

// ToggleUserStatus enables or disables an account.
//
// @Summary      Toggle user status
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /admin/users/{id}/status [patch]
func (h *AdminHandler) ToggleUserStatus(c echo.Context) error {
	res, err := h.api.Users.ToggleStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// UpdateUserRoles replaces an account's roles.
//
// @Summary      Update user roles
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "User ID"
// @Param        body  body      rolesRequest  true  "Roles"
// @Success      200   {object}  rentalapi.Result
// @Router       /admin/users/{id}/roles [put]
func (h *AdminHandler) UpdateUserRoles(c echo.Context) error {
	var req rolesRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.api.Users.UpdateRoles(c.Request().Context(), c.Param("id"), req.Roles)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// DeleteUser removes an account.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	res, err := h.api.Users.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// EditRequests lists pending profile edit requests, oldest first.
//
// @Summary      Pending edit requests
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listView[domain.EditRequest]
// @Router       /admin/edit-requests [get]
func (h *AdminHandler) EditRequests(c echo.Context) error {
	reqs, err := h.edits.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListView(reqs))
}

// ApproveEditRequest approves a user's pending edit request.
//
// @Summary      Approve edit request
// @Tags         admin
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  domain.EditRequest
// @Failure      404     {object}  map[string]any
// @Failure      409     {object}  map[string]any
// @Router       /admin/edit-requests/{userId}/approve [post]
func (h *AdminHandler) ApproveEditRequest(c echo.Context) error {
	req, err := h.edits.Approve(c.Request().Context(), domain.ID(c.Param("userId")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

// RejectEditRequest rejects a user's pending edit request with a reason.
//
// @Summary      Reject edit request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        userId  path      string         true  "User ID"
// @Param        body    body      rejectRequest  false "Reason shown to the user"
// @Success      200     {object}  domain.EditRequest
// @Router       /admin/edit-requests/{userId}/reject [post]
func (h *AdminHandler) RejectEditRequest(c echo.Context) error {
	var body rejectRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
	}
	req, err := h.edits.Reject(c.Request().Context(), domain.ID(c.Param("userId")), body.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

// Payments lists every payment.
//
// @Summary      List payments
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listView[domain.Payment]
// @Router       /admin/payments [get]
func (h *AdminHandler) Payments(c echo.Context) error {
	res, err := h.api.Payments.All(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapPayments)
}

// RefundPayment refunds a payment.
//
// @Summary      Refund payment
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /admin/payments/{id}/refund [post]
func (h *AdminHandler) RefundPayment(c echo.Context) error {
	res, err := h.api.Payments.Refund(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	h.log.Info().Str("payment_id", c.Param("id")).Msg("payment refunded")
	return renderResult(c, http.StatusOK, res)
}

// Notify sends a notification to one user or to everyone.
//
// @Summary      Send notification
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      rentalapi.NotificationInput  true  "Notification"
// @Success      201   {object}  rentalapi.Result
// @Router       /admin/notifications [post]
func (h *AdminHandler) Notify(c echo.Context) error {
	var req rentalapi.NotificationInput
	if err := bindValid(c, &req); err != nil {
		return err
	}
	res, err := h.api.Notifications.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusCreated, res)
}
