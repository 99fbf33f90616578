package rentalapi

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/carrental/storefront/internal/core/domain"
)

// PaymentAPI covers checkout and the admin payment ledger.
type PaymentAPI struct{ c *Client }

func (a *PaymentAPI) CreateIntent(ctx context.Context, bookingID string) (*Result, error) {
	return a.c.post(ctx, resource("/payments/create-intent/%s", bookingID), nil, "Failed to create payment intent.")
}

// Confirm forwards the payment provider's confirmation payload unchanged.
func (a *PaymentAPI) Confirm(ctx context.Context, payload json.RawMessage) (*Result, error) {
	return a.c.post(ctx, "/payments/confirm", payload, "Payment confirmation failed.")
}

func (a *PaymentAPI) Methods(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/payments/methods", nil, "Failed to fetch payment methods.")
}

func (a *PaymentAPI) AddMethod(ctx context.Context, m domain.PaymentMethod) (*Result, error) {
	return a.c.post(ctx, "/payments/methods", m, "Failed to add payment method.")
}

func (a *PaymentAPI) RemoveMethod(ctx context.Context, id string) (*Result, error) {
	return a.c.delete(ctx, resource("/payments/methods/%s", id), nil, "Failed to remove payment method.")
}

func (a *PaymentAPI) All(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/admin/payments", params, "Failed to fetch payments.")
}

func (a *PaymentAPI) Get(ctx context.Context, id string) (*Result, error) {
	return a.c.get(ctx, resource("/admin/payments/%s", id), nil, "Failed to fetch payment details.")
}

func (a *PaymentAPI) Refund(ctx context.Context, id string) (*Result, error) {
	return a.c.post(ctx, resource("/admin/payments/%s/refund", id), nil, "Failed to process refund.")
}

func (a *PaymentAPI) Stats(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/admin/payments/stats", nil, "Failed to fetch payment statistics.")
}
