package ports

import (
	"context"
	"encoding/json"

	"github.com/carrental/storefront/internal/core/domain"
)

// AuthBackend is the subset of the backend the session store depends on.
// Bodies are returned raw; the store owns shape detection and normalization.
type AuthBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (json.RawMessage, error)
	CurrentUser(ctx context.Context) (json.RawMessage, error)
	Logout(ctx context.Context) error
}

// CredentialHolder mirrors the bearer credential into outgoing requests.
type CredentialHolder interface {
	SetCredential(token string)
	ClearCredential()
}

// Navigator performs a client-side navigation, e.g. to the login view.
type Navigator interface {
	Navigate(location string)
}

// SessionReader exposes the derived session state to guards and views.
type SessionReader interface {
	State() domain.SessionState
}

// SessionManager is the session surface the view controllers drive.
type SessionManager interface {
	SessionReader
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
	Logout(ctx context.Context) error
	// ApplyProfile takes the State().Epoch read before the profile request.
	ApplyProfile(ctx context.Context, epoch uint64, raw json.RawMessage) (*domain.Identity, error)
	ClearError()
}

// EditRequests is the profile edit-request workflow.
type EditRequests interface {
	Submit(ctx context.Context, user *domain.Identity, update domain.ProfileUpdate, original map[string]string) (*domain.EditRequest, error)
	Current(ctx context.Context, userID domain.ID) (*domain.EditRequest, error)
	Cancel(ctx context.Context, userID domain.ID) error
	ListPending(ctx context.Context) ([]domain.EditRequest, error)
	Approve(ctx context.Context, userID domain.ID) (*domain.EditRequest, error)
	Reject(ctx context.Context, userID domain.ID, reason string) (*domain.EditRequest, error)
}
