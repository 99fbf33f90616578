package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"wrapped pending", fmt.Errorf("submit: %w", domain.ErrEditRequestPending), http.StatusConflict, "You already have a pending edit request."},
		{"not found", domain.ErrEditRequestNotFound, http.StatusNotFound, "edit request not found"},
		{"no changes", domain.ErrNoChanges, http.StatusBadRequest, "No changes detected."},
		{"session changed", fmt.Errorf("apply profile: %w", domain.ErrSessionChanged), http.StatusConflict, "Session changed. Please reload."},
		{"unauthenticated", domain.ErrNotAuthenticated, http.StatusUnauthorized, "authentication required"},
		{"bad login body", fmt.Errorf("login: %w", domain.ErrMissingCredential), http.StatusBadGateway, "Unexpected response from server."},
		{"backend status", &rentalapi.APIError{Message: "Car not found", Status: 404, Kind: rentalapi.KindServer}, http.StatusNotFound, "Car not found"},
		{"network", &rentalapi.APIError{Message: "Network error. Please check your connection.", Kind: rentalapi.KindNetwork}, http.StatusBadGateway, "Network error. Please check your connection."},
		{"validation", &rentalapi.APIError{Message: "File is required", Status: -1, Kind: rentalapi.KindValidation}, http.StatusUnprocessableEntity, "File is required"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

			resp := resolveError(tc.err, zerolog.Nop(), c)
			if resp.Status != tc.code || resp.Message != tc.msg {
				t.Fatalf("got %d %q, want %d %q", resp.Status, resp.Message, tc.code, tc.msg)
			}
			if resp.Success {
				t.Fatal("error responses never report success")
			}
		})
	}
}

func TestErrorHandler_CarriesBackendData(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	apiErr := &rentalapi.APIError{
		Message: "Car not available",
		Status:  http.StatusConflict,
		Kind:    rentalapi.KindServer,
		Data:    json.RawMessage(`{"message":"Car not available","conflicts":[{"bookingId":4}]}`),
	}
	NewHTTPErrorHandler(zerolog.Nop())(apiErr, c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var body struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Status  int             `json:"status"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "Car not available" || body.Status != http.StatusConflict {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if !strings.Contains(string(body.Data), `"bookingId":4`) {
		t.Fatalf("backend data dropped: %s", body.Data)
	}
}
