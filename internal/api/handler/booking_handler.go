package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

type BookingHandler struct {
	bookings *rentalapi.BookingAPI
}

func NewBookingHandler(bookings *rentalapi.BookingAPI) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create books a car. The form is validated before anything is sent, so an
// invalid booking never reaches the backend.
//
// @Summary      Book a car
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      domain.BookingRequest  true  "Car and dates (YYYY-MM-DD)"
// @Success      201   {object}  rentalapi.Result
// @Failure      422   {object}  map[string]any
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req domain.BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	res, err := h.bookings.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusCreated, res)
}

// Mine lists the signed-in user's bookings.
//
// @Summary      My bookings
// @Tags         bookings
// @Produce      json
// @Success      200  {object}  listView[domain.Booking]
// @Router       /bookings [get]
func (h *BookingHandler) Mine(c echo.Context) error {
	res, err := h.bookings.Mine(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapBookings)
}

// Get returns one booking.
//
// @Summary      Booking detail
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	res, err := h.bookings.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	b, err := rentalapi.UnwrapBooking(res.Data)
	if err != nil {
		return rentalapi.NormalizeError(err, "Failed to fetch booking details.")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "booking": b})
}

// Cancel cancels a booking.
//
// @Summary      Cancel booking
// @Tags         bookings
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c echo.Context) error {
	res, err := h.bookings.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// All lists every booking for administrators.
//
// @Summary      All bookings
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listView[domain.Booking]
// @Router       /admin/bookings [get]
func (h *BookingHandler) All(c echo.Context) error {
	res, err := h.bookings.All(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapBookings)
}
