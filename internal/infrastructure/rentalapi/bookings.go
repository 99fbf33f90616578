package rentalapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/carrental/storefront/internal/api/metrics"
	"github.com/carrental/storefront/internal/core/domain"
)

// BookingAPI covers customer bookings and the admin booking list.
type BookingAPI struct{ c *Client }

// Validate runs the client-side booking rules.
func (a *BookingAPI) Validate(req domain.BookingRequest) []string {
	return a.c.bookings.Validate(req)
}

// Create validates the request first; an invalid request never reaches the
// backend.
func (a *BookingAPI) Create(ctx context.Context, req domain.BookingRequest) (*Result, error) {
	if errs := a.Validate(req); len(errs) > 0 {
		metrics.BookingValidationFailuresTotal.Inc()
		return nil, a.c.invalid(http.MethodPost, "/bookings", errs, "Failed to create booking.")
	}
	return a.c.post(ctx, "/bookings", req, "Failed to create booking.")
}

func (a *BookingAPI) Mine(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/bookings/me", params, "Failed to fetch your bookings.")
}

func (a *BookingAPI) All(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/bookings/all", params, "Failed to fetch bookings.")
}

func (a *BookingAPI) Get(ctx context.Context, id string) (*Result, error) {
	return a.c.get(ctx, resource("/bookings/%s", id), nil, "Failed to fetch booking details.")
}

func (a *BookingAPI) Cancel(ctx context.Context, id string) (*Result, error) {
	return a.c.delete(ctx, resource("/bookings/%s", id), nil, "Failed to cancel booking.")
}

func (a *BookingAPI) Update(ctx context.Context, id string, req domain.BookingRequest) (*Result, error) {
	path := resource("/bookings/%s", id)
	if errs := a.Validate(req); len(errs) > 0 {
		metrics.BookingValidationFailuresTotal.Inc()
		return nil, a.c.invalid(http.MethodPut, path, errs, "Failed to update booking.")
	}
	return a.c.put(ctx, path, req, "Failed to update booking.")
}
