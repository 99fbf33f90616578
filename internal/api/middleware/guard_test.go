package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/service"
)

type fixedSession domain.SessionState

func (s fixedSession) State() domain.SessionState { return domain.SessionState(s) }

func serve(t *testing.T, mw echo.MiddlewareFunc, target string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, called
}

func TestGuard_AllowsSignedInUser(t *testing.T) {
	st := fixedSession{IsAuthenticated: true, Identity: &domain.Identity{Username: "alice"}}
	rec, called := serve(t, RequireAuth(st), "/bookings")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestGuard_WaitsWhileLoading(t *testing.T) {
	rec, called := serve(t, RequireAuth(fixedSession{Loading: true}), "/bookings")
	if called {
		t.Fatal("protected content must not render while loading")
	}
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 503 with Retry-After, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), service.MsgCheckingAuth) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestGuard_RedirectsAnonymousWithFrom(t *testing.T) {
	rec, called := serve(t, RequireAuth(fixedSession{}), "/bookings?page=2")
	if called {
		t.Fatal("should not reach next handler")
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?from=%2Fbookings%3Fpage%3D2" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestGuard_DeniesNonAdminWithoutRedirect(t *testing.T) {
	st := fixedSession{IsAuthenticated: true, Identity: &domain.Identity{Username: "bob", Roles: []string{domain.RoleUser}}}
	rec, called := serve(t, AdminOnly(st), "/admin/dashboard")
	if called {
		t.Fatal("should not reach next handler")
	}
	if rec.Code != http.StatusForbidden || rec.Header().Get("Location") != "" {
		t.Fatalf("expected 403 without redirect, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "bob") || !strings.Contains(body, service.MsgAdminOnly) {
		t.Fatalf("access denied view must name the user: %s", body)
	}
}

func TestGuard_PublicRouteIgnoresLoading(t *testing.T) {
	rec, called := serve(t, Guard(fixedSession{Loading: true}, service.Requirement{}), "/cars")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("public routes must render, got %d", rec.Code)
	}
}
