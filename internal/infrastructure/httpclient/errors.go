package httpclient

import (
	"fmt"
	"net/http"
)

// NetworkError means the request was sent but no response came back.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: backend unavailable: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a 4xx/5xx response. Body is the raw response body.
type ServerError struct {
	Method string
	URL    string
	Status int
	Body   []byte
	Header http.Header
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.Status)
}

// RequestError means the request could not be built (bad URL, unencodable body).
type RequestError struct {
	Method string
	Path   string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: build request: %v", e.Method, e.Path, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
