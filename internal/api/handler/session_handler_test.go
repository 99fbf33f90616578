package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

func TestSessionHandler_Login_Success(t *testing.T) {
	stub := &stubSession{
		loginFn: func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
			if creds.Username != "alice" || creds.Password != "secret" {
				t.Fatalf("unexpected credentials: %+v", creds)
			}
			return &domain.Identity{ID: "1", Username: "alice", Roles: []string{domain.RoleAdmin}}, nil
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/login?from=%2Fbookings", `{"username":"alice","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || !resp.IsAdmin || resp.User.Username != "alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Redirect != "/bookings" {
		t.Fatalf("expected redirect back to /bookings, got %q", resp.Redirect)
	}
}

func TestSessionHandler_Login_MissingFields(t *testing.T) {
	stub := &stubSession{
		loginFn: func(context.Context, domain.Credentials) (*domain.Identity, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/login", `{"username":"alice"}`)
	err := h.Login(c)

	var vf *validationFailure
	if !errors.As(err, &vf) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(vf.Messages()) != 1 || vf.Messages()[0] != "password is required" {
		t.Fatalf("unexpected messages: %v", vf.Messages())
	}
}

func TestSessionHandler_Login_BackendRejects(t *testing.T) {
	rejected := &rentalapi.APIError{Message: "Invalid credentials", Status: http.StatusUnauthorized, Kind: rentalapi.KindServer}
	stub := &stubSession{
		loginFn: func(context.Context, domain.Credentials) (*domain.Identity, error) {
			return nil, rejected
		},
	}
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, _ := newContext(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	if err := h.Login(c); !errors.Is(err, rejected) {
		t.Fatalf("expected the facade error to propagate, got %v", err)
	}
}

func TestSessionHandler_LogoutReturnsAnonymousState(t *testing.T) {
	stub := signedIn(&domain.Identity{Username: "alice"})
	h := NewSessionHandler(stub, nil, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var st domain.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if st.IsAuthenticated || stub.logouts != 1 {
		t.Fatalf("expected anonymous state after logout, got %+v", st)
	}
}

func TestSessionHandler_SignupForwardsToBackend(t *testing.T) {
	api := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/signup" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully!"})
	})
	h := NewSessionHandler(&stubSession{}, api.Auth, zerolog.Nop())

	c, rec := newContext(http.MethodPost, "/signup", `{"username":"carol","email":"carol@example.com","password":"secret1"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRedirectTarget(t *testing.T) {
	cases := map[string]string{
		"":                  "/",
		"/bookings":         "/bookings",
		"/admin/cars?p=2":   "/admin/cars?p=2",
		"//evil.example":    "/",
		"https://evil.test": "/",
		"/login":            "/",
	}
	for in, want := range cases {
		if got := redirectTarget(in); got != want {
			t.Fatalf("redirectTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
