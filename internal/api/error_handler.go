package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

// errorResponse is the canonical error envelope for all storefront errors.
// It mirrors the facade's failure shape.
type errorResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

// fieldErrors is implemented by request validation failures.
type fieldErrors interface {
	StatusCode() int
	Messages() []string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders facade failures with the backend status and message.
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(resp.Status)
			return
		}
		_ = c.JSON(resp.Status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) errorResponse {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return errorResponse{Status: he.Code, Message: fmt.Sprintf("%v", he.Message)}
	}

	var fe fieldErrors
	if errors.As(err, &fe) {
		return errorResponse{Status: fe.StatusCode(), Message: err.Error(), Errors: fe.Messages()}
	}

	// Facade failures keep the backend's message.
	var apiErr *rentalapi.APIError
	if errors.As(err, &apiErr) {
		return apiFailure(apiErr, log, c)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return errorResponse{Status: http.StatusUnauthorized, Message: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		return errorResponse{Status: http.StatusForbidden, Message: "access forbidden"}
	case errors.Is(err, domain.ErrEditRequestNotFound):
		return errorResponse{Status: http.StatusNotFound, Message: "edit request not found"}
	case errors.Is(err, domain.ErrEditRequestPending):
		return errorResponse{Status: http.StatusConflict, Message: "You already have a pending edit request."}
	case errors.Is(err, domain.ErrInvalidTransition):
		return errorResponse{Status: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrSessionChanged):
		return errorResponse{Status: http.StatusConflict, Message: "Session changed. Please reload."}
	case errors.Is(err, domain.ErrNoChanges):
		return errorResponse{Status: http.StatusBadRequest, Message: "No changes detected."}
	case errors.Is(err, domain.ErrUnknownImageSource):
		return errorResponse{Status: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, domain.ErrMissingCredential), errors.Is(err, domain.ErrInvalidIdentity):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend response not understood")
		return errorResponse{Status: http.StatusBadGateway, Message: "Unexpected response from server."}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return errorResponse{Status: http.StatusInternalServerError, Message: "internal server error"}
}

// apiFailure picks the storefront status for a facade failure. Failures that
// never produced a backend status surface as a bad gateway.
func apiFailure(e *rentalapi.APIError, log zerolog.Logger, c echo.Context) errorResponse {
	resp := errorResponse{Message: e.Message, Data: e.Data, Errors: e.Errors}
	switch e.Kind {
	case rentalapi.KindServer:
		resp.Status = e.Status
	case rentalapi.KindValidation:
		resp.Status = http.StatusUnprocessableEntity
	default:
		resp.Status = http.StatusBadGateway
	}
	if resp.Status < 400 || resp.Status > 599 {
		resp.Status = http.StatusBadGateway
	}

	ev := log.Debug()
	if resp.Status >= http.StatusInternalServerError {
		ev = log.Warn()
	}
	ev.Err(e).
		Str("kind", string(e.Kind)).
		Int("backend_status", e.Status).
		Str("path", c.Path()).
		Msg("backend call failed")
	return resp
}
