package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/infrastructure/httpclient"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

// ---------------------------------------------------------------------------
// Session stub
// ---------------------------------------------------------------------------

type stubSession struct {
	mu       sync.Mutex
	state    domain.SessionState
	loginFn  func(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
	applied  []json.RawMessage
	applyErr error
	logouts  int
}

func signedIn(id *domain.Identity) *stubSession {
	return &stubSession{state: domain.SessionState{
		Identity:        id,
		IsAuthenticated: true,
		IsAdmin:         id.IsAdmin(),
	}}
}

func (s *stubSession) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stubSession) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	return s.loginFn(ctx, creds)
}

func (s *stubSession) Logout(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	s.state = domain.SessionState{}
	return nil
}

func (s *stubSession) ApplyProfile(_ context.Context, epoch uint64, raw json.RawMessage) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, raw)
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	if epoch != s.state.Epoch {
		return nil, domain.ErrSessionChanged
	}
	id, err := domain.NormalizeIdentity(raw)
	if err != nil {
		return nil, err
	}
	s.state.Identity = id
	return id, nil
}

func (s *stubSession) ClearError() {}

// ---------------------------------------------------------------------------
// Backend
// ---------------------------------------------------------------------------

func fixedNow() time.Time { return time.Date(2030, 6, 15, 9, 0, 0, 0, time.Local) }

func newBackend(t *testing.T, h http.HandlerFunc) *rentalapi.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hc, err := httpclient.New(httpclient.Config{BaseURL: srv.URL + "/api"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	return rentalapi.New(hc, rentalapi.Options{Now: fixedNow}, zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
