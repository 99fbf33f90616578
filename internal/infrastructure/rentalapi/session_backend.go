package rentalapi

import (
	"context"
	"encoding/json"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
)

var _ ports.AuthBackend = (*SessionBackend)(nil)

// SessionBackend exposes the auth endpoints the session store needs.
type SessionBackend struct {
	auth *AuthAPI
}

func NewSessionBackend(c *Client) *SessionBackend {
	return &SessionBackend{auth: c.Auth}
}

func (b *SessionBackend) Login(ctx context.Context, creds domain.Credentials) (json.RawMessage, error) {
	res, err := b.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (b *SessionBackend) CurrentUser(ctx context.Context) (json.RawMessage, error) {
	res, err := b.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (b *SessionBackend) Logout(ctx context.Context) error {
	_, err := b.auth.Logout(ctx)
	return err
}
