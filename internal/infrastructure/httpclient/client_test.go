package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api/", Timeout: 2 * time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"}, zerolog.Nop())
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected RequestError, got %v", err)
	}
}

func TestDo_AttachesCredentialAndHeaders(t *testing.T) {
	var gotAuth, gotID, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	c.SetCredential("abc")
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/cars"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer abc" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotID == "" {
		t.Fatal("expected a request id")
	}
	if gotPath != "/api/cars" {
		t.Fatalf("path not joined to base: %s", gotPath)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", resp.Body)
	}

	c.ClearCredential()
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "cars"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("credential must be gone after ClearCredential, got %q", gotAuth)
	}
}

func TestDo_SessionScoped401ClearsCredentialAndNotifies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"expired"}`)
	})

	var notified atomic.Value
	c.OnSessionExpired(func(path string) {
		// Re-entrant calls must not deadlock.
		if c.Credential() != "" {
			t.Error("credential must be cleared before the handler runs")
		}
		notified.Store(path)
	})
	c.SetCredential("abc")

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/auth/me"})
	var se *ServerError
	if !errors.As(err, &se) || se.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 ServerError, got %v", err)
	}
	if notified.Load() != "/auth/me" {
		t.Fatalf("handler not called, got %v", notified.Load())
	}
	if c.Credential() != "" {
		t.Fatal("credential must be cleared")
	}
}

func TestDo_Unscoped401KeepsSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	called := false
	c.OnSessionExpired(func(string) { called = true })
	c.SetCredential("abc")

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/cars/1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if called || c.Credential() != "abc" {
		t.Fatal("a 401 outside auth/admin paths must not end the session")
	}
}

func TestDo_NetworkError(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/cars"})
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T %v", err, err)
	}
}

func TestDo_UnencodableBodyIsRequestError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/cars", JSON: make(chan int)})
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected RequestError, got %v", err)
	}
}

func TestSessionScoped(t *testing.T) {
	cases := map[string]bool{
		"/auth/me":      true,
		"auth/signin":   true,
		"/admin/cars/1": true,
		"/cars":         false,
		"/bookings/me":  false,
		"/authors":      false,
		"/user/profile": false,
	}
	for path, want := range cases {
		if got := SessionScoped(path); got != want {
			t.Fatalf("SessionScoped(%q) = %v, want %v", path, got, want)
		}
	}
}
