// Package rentalapi is the typed facade over the rental backend. Every call
// returns a Result on success or an *APIError on failure; callers never see
// raw transport errors.
package rentalapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/infrastructure/httpclient"
)

// Options tunes the facade.
type Options struct {
	// Retry applies to idempotent reads only.
	Retry RetryPolicy
	// Uploads bounds every file sent to the backend.
	Uploads FileRules
	// Now drives date validation. Defaults to time.Now.
	Now func() time.Time
}

// Client groups the backend resources.
type Client struct {
	http     *httpclient.Client
	log      zerolog.Logger
	retry    RetryPolicy
	uploads  FileRules
	bookings *BookingValidator

	Auth          *AuthAPI
	Cars          *CarAPI
	Bookings      *BookingAPI
	Users         *UserAPI
	Uploads       *UploadAPI
	Notifications *NotificationAPI
	Payments      *PaymentAPI
	Analytics     *AnalyticsAPI
}

// New wires every resource group to the shared HTTP client.
func New(hc *httpclient.Client, opts Options, log zerolog.Logger) *Client {
	if opts.Retry.Attempts < 1 {
		opts.Retry = NoRetry
	}
	c := &Client{
		http:     hc,
		log:      log,
		retry:    opts.Retry,
		uploads:  opts.Uploads.withDefaults(),
		bookings: NewBookingValidator(opts.Now),
	}
	c.Auth = &AuthAPI{c: c}
	c.Cars = &CarAPI{c: c}
	c.Bookings = &BookingAPI{c: c}
	c.Users = &UserAPI{c: c}
	c.Uploads = &UploadAPI{c: c}
	c.Notifications = &NotificationAPI{c: c}
	c.Payments = &PaymentAPI{c: c}
	c.Analytics = &AnalyticsAPI{c: c}
	return c
}

// HTTP exposes the underlying client, e.g. to register the 401 handler.
func (c *Client) HTTP() *httpclient.Client { return c.http }

// Ping checks the backend is reachable. Any HTTP answer counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/cars/available"})
	if err == nil {
		return nil
	}
	var se *httpclient.ServerError
	if errors.As(err, &se) {
		return nil
	}
	return err
}

func (c *Client) send(ctx context.Context, r httpclient.Request, fallback string) (*Result, error) {
	resp, err := c.http.Do(ctx, r)
	if err != nil {
		return nil, c.fail(r, err, fallback)
	}
	return &Result{Success: true, Data: rawJSON(resp.Body), Status: resp.Status}, nil
}

// fail normalizes and logs a failure. It is the only place facade errors are built.
func (c *Client) fail(r httpclient.Request, err error, fallback string) *APIError {
	apiErr := NormalizeError(err, fallback)
	c.log.Warn().
		Str("method", r.Method).
		Str("path", r.Path).
		Str("kind", string(apiErr.Kind)).
		Int("status", apiErr.Status).
		Msg(apiErr.Message)
	return apiErr
}

// get is retried under the configured policy.
func (c *Client) get(ctx context.Context, path string, query url.Values, fallback string) (*Result, error) {
	r := httpclient.Request{Method: http.MethodGet, Path: path, Query: query}
	res, err := Retry(ctx, c.retry, func(ctx context.Context) (*httpclient.Response, error) {
		return c.http.Do(ctx, r)
	})
	if err != nil {
		return nil, c.fail(r, err, fallback)
	}
	return &Result{Success: true, Data: rawJSON(res.Body), Status: res.Status}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, fallback string) (*Result, error) {
	return c.send(ctx, httpclient.Request{Method: http.MethodPost, Path: path, JSON: body}, fallback)
}

func (c *Client) put(ctx context.Context, path string, body any, fallback string) (*Result, error) {
	return c.send(ctx, httpclient.Request{Method: http.MethodPut, Path: path, JSON: body}, fallback)
}

func (c *Client) patch(ctx context.Context, path string, body any, fallback string) (*Result, error) {
	return c.send(ctx, httpclient.Request{Method: http.MethodPatch, Path: path, JSON: body}, fallback)
}

func (c *Client) delete(ctx context.Context, path string, body any, fallback string) (*Result, error) {
	return c.send(ctx, httpclient.Request{Method: http.MethodDelete, Path: path, JSON: body}, fallback)
}

// upload validates every file then posts them as multipart form data.
func (c *Client) upload(ctx context.Context, method, path string, fields []formField, files []formFile, fallback string) (*Result, error) {
	r := httpclient.Request{Method: method, Path: path}
	var errs []string
	for _, f := range files {
		errs = append(errs, ValidateFile(f.file, c.uploads)...)
	}
	if len(errs) > 0 {
		return nil, c.fail(r, &ValidationError{Errors: errs}, fallback)
	}

	body, contentType, err := multipartBody(fields, files)
	if err != nil {
		return nil, c.fail(r, err, fallback)
	}
	r.Body = body
	r.ContentType = contentType
	return c.send(ctx, r, fallback)
}

// invalid reports a client-side validation failure without any network call.
func (c *Client) invalid(method, path string, errs []string, fallback string) *APIError {
	return c.fail(httpclient.Request{Method: method, Path: path}, &ValidationError{Errors: errs}, fallback)
}

func resource(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}

func periodQuery(period string) url.Values {
	if period == "" {
		return nil
	}
	return url.Values{"period": {period}}
}
