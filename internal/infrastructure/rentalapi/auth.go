package rentalapi

import (
	"context"

	"github.com/carrental/storefront/internal/core/domain"
)

// AuthAPI covers sign-in, registration and password recovery.
type AuthAPI struct{ c *Client }

func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (*Result, error) {
	return a.c.post(ctx, "/auth/signin", creds, "Login failed. Please check your credentials.")
}

func (a *AuthAPI) Signup(ctx context.Context, req domain.SignupRequest) (*Result, error) {
	return a.c.post(ctx, "/auth/signup", req, "Registration failed. Please try again.")
}

func (a *AuthAPI) CurrentUser(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/auth/me", nil, "Failed to fetch user data.")
}

func (a *AuthAPI) RefreshToken(ctx context.Context) (*Result, error) {
	return a.c.post(ctx, "/auth/refresh", nil, "Token refresh failed.")
}

func (a *AuthAPI) Logout(ctx context.Context) (*Result, error) {
	return a.c.post(ctx, "/auth/logout", nil, "Logout failed.")
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) (*Result, error) {
	return a.c.post(ctx, "/auth/forgot-password", map[string]string{"email": email}, "Password reset request failed.")
}

func (a *AuthAPI) ResetPassword(ctx context.Context, token, newPassword string) (*Result, error) {
	body := map[string]string{"token": token, "newPassword": newPassword}
	return a.c.post(ctx, "/auth/reset-password", body, "Password reset failed.")
}
