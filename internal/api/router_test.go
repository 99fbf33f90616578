package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/api/middleware"
	"github.com/carrental/storefront/internal/core/service"
	"github.com/carrental/storefront/internal/infrastructure/httpclient"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
	"github.com/carrental/storefront/internal/infrastructure/storage/memory"
)

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type storefront struct {
	e       *echo.Echo
	session *service.SessionStore
}

func newStorefront(t *testing.T, backend http.HandlerFunc) *storefront {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	hc, err := httpclient.New(httpclient.Config{BaseURL: srv.URL + "/api"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	now := func() time.Time { return time.Date(2030, 6, 15, 9, 0, 0, 0, time.Local) }
	client := rentalapi.New(hc, rentalapi.Options{Now: now}, zerolog.Nop())
	store := memory.New()
	nav := middleware.NewNavigator()

	session := service.NewSessionStore(store, rentalapi.NewSessionBackend(client), hc, nav, zerolog.Nop(),
		service.SessionOptions{Schedule: func(_ time.Duration, f func()) { f() }})
	hc.OnSessionExpired(func(string) { session.Expire() })

	e := NewRouter(Deps{
		Session:   session,
		API:       client,
		Edits:     service.NewEditRequestService(store, zerolog.Nop(), now),
		Dashboard: service.NewDashboardService(zerolog.Nop()),
		Navigator: nav,
		Log:       zerolog.Nop(),
	})
	return &storefront{e: e, session: session}
}

func (s *storefront) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *storefront) login(t *testing.T, username string) {
	t.Helper()
	if err := s.session.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	rec := s.do(http.MethodPost, "/login", `{"username":"`+username+`","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// signin answers the login endpoint; "root" is an administrator.
func signin(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Path != "/api/auth/signin" {
		return false
	}
	var creds struct {
		Username string `json:"username"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)
	role := "ROLE_USER"
	if creds.Username == "root" {
		role = "ROLE_ADMIN"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": "tok-" + creds.Username, "id": 3, "username": creds.Username, "roles": []string{role},
	})
	return true
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

// ---------------------------------------------------------------------------
// Guarded routes
// ---------------------------------------------------------------------------

func TestRouter_ProtectedRouteWaitsWhileRestoring(t *testing.T) {
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no backend call expected, got %s", r.URL.Path)
	})

	rec := s.do(http.MethodGet, "/bookings", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while loading, got %d", rec.Code)
	}
}

func TestRouter_AnonymousRedirectedToLogin(t *testing.T) {
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no backend call expected, got %s", r.URL.Path)
	})
	if err := s.session.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	rec := s.do(http.MethodGet, "/profile", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?from=%2Fprofile" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_NonAdminDenied(t *testing.T) {
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		if !signin(w, r) {
			t.Errorf("unexpected backend call %s", r.URL.Path)
		}
	})
	s.login(t, "bob")

	rec := s.do(http.MethodGet, "/admin/dashboard", "")
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "bob") {
		t.Fatalf("expected access denied naming bob, got %d %s", rec.Code, rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestRouter_InvalidBookingNeverReachesBackend(t *testing.T) {
	var bookings atomic.Int32
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		if signin(w, r) {
			return
		}
		bookings.Add(1)
		w.WriteHeader(http.StatusCreated)
	})
	s.login(t, "bob")

	rec := s.do(http.MethodPost, "/bookings", `{"carId":4,"startDate":"2030-06-20","endDate":"2030-06-18"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if len(resp.Errors) != 1 || resp.Errors[0] != "End date must be after start date" {
		t.Fatalf("unexpected errors %v", resp.Errors)
	}
	if bookings.Load() != 0 {
		t.Fatal("invalid booking reached the backend")
	}
}

func TestRouter_BackendMessageAndStatus(t *testing.T) {
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Car not found"})
	})

	rec := s.do(http.MethodGet, "/cars/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Message != "Car not found" || resp.Success {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestRouter_ExpiredSessionNavigatesToLogin(t *testing.T) {
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		if signin(w, r) {
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Full authentication is required"})
	})
	s.login(t, "root")

	rec := s.do(http.MethodGet, "/admin/users", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if st := s.session.State(); st.IsAuthenticated || st.Error != service.MsgSessionExpired {
		t.Fatalf("expected expired session, got %+v", st)
	}

	rec = s.do(http.MethodGet, "/cars", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?session=expired" {
		t.Fatalf("expected navigation to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_DashboardReportsFailedSections(t *testing.T) {
	s := newStorefront(t, func(w http.ResponseWriter, r *http.Request) {
		if signin(w, r) {
			return
		}
		if r.URL.Path == "/api/admin/analytics/revenue" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad period"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"total": 1})
	})
	s.login(t, "root")

	rec := s.do(http.MethodGet, "/admin/dashboard?period=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Complete bool                       `json:"complete"`
		Sections map[string]json.RawMessage `json:"sections"`
		Errors   map[string]string          `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Complete || resp.Errors["revenue"] != "bad period" {
		t.Fatalf("expected the revenue section to fail, got %+v", resp.Errors)
	}
	if _, ok := resp.Sections["stats"]; !ok {
		t.Fatalf("other sections must still load, got %v", resp.Sections)
	}
}
