package rentalapi

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/carrental/storefront/internal/infrastructure/httpclient"
)

// Result is the success envelope returned by every facade call.
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Status  int             `json:"-"`
}

// Decode unmarshals the raw payload into v.
func (r *Result) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Kind classifies a failure.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
	KindValidation Kind = "validation"
	KindUnexpected Kind = "unexpected"
)

// Status discriminators for failures that carry no HTTP code.
const (
	StatusNetwork      = 0
	StatusUnclassified = -1
)

const networkMessage = "Network error. Please check your connection."

// APIError is the failure envelope returned by every facade call.
type APIError struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Kind    Kind            `json:"kind"`
	Errors  []string        `json:"errors,omitempty"`

	cause error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

// ValidationError lists every client-side rule a request violated.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Errors, ", ") }

// NormalizeError converts any error raised below the facade into an APIError.
// fallback is used when the server body carries no usable message.
func NormalizeError(err error, fallback string) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var se *httpclient.ServerError
	if errors.As(err, &se) {
		return &APIError{
			Message: extractMessage(se.Body, fallback),
			Status:  se.Status,
			Data:    rawJSON(se.Body),
			Kind:    KindServer,
			cause:   err,
		}
	}

	var ne *httpclient.NetworkError
	if errors.As(err, &ne) {
		return &APIError{Message: networkMessage, Status: StatusNetwork, Kind: KindNetwork, cause: err}
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return &APIError{
			Message: ve.Error(),
			Status:  StatusUnclassified,
			Kind:    KindValidation,
			Errors:  append([]string(nil), ve.Errors...),
			cause:   err,
		}
	}

	msg := err.Error()
	if msg == "" {
		msg = fallback
	}
	return &APIError{Message: msg, Status: StatusUnclassified, Kind: KindUnexpected, cause: err}
}

// extractMessage picks message, then error, then detail from a JSON error body.
func extractMessage(body []byte, fallback string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fallback
	}
	for _, key := range []string{"message", "error", "detail"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}

// rawJSON keeps valid JSON bodies as is and wraps anything else as a JSON string.
func rawJSON(body []byte) json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return json.RawMessage("null")
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(trimmed)
	return quoted
}
