package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/api/metrics"
)

const defaultTimeout = 10 * time.Second

// SessionExpiredHandler is called after an authentication-scoped 401 has
// cleared the default credential. The path is the request path that failed.
type SessionExpiredHandler func(path string)

// Config captures the settings of the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport overrides the default round tripper (tests).
	Transport http.RoundTripper
}

// Request describes one backend call. Path is relative to the base URL.
// JSON, when non-nil, is encoded as the body; otherwise Body/ContentType are
// sent as is.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	JSON        any
	Body        io.Reader
	ContentType string
}

// Response is a successful (2xx) backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client is the configured HTTP client every facade call goes through.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     zerolog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	token   string
	expired SessionExpiredHandler
}

// New builds a Client. An invalid base URL is reported immediately.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, &RequestError{Method: "-", Path: cfg.BaseURL, Err: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &RequestError{Method: "-", Path: cfg.BaseURL, Err: errors.New("base url must be absolute")}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout, Transport: cfg.Transport},
		log:  log,
		now:  time.Now,
	}, nil
}

// SetCredential installs the default bearer credential.
func (c *Client) SetCredential(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearCredential removes the default bearer credential.
func (c *Client) ClearCredential() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Credential returns the current default credential, if any.
func (c *Client) Credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// OnSessionExpired registers the handler run after an authentication-scoped 401.
func (c *Client) OnSessionExpired(h SessionExpiredHandler) {
	c.mu.Lock()
	c.expired = h
	c.mu.Unlock()
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Do sends the request and passes the outcome through the response inspection.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	req, err := c.build(ctx, r)
	if err != nil {
		return nil, err
	}

	start := c.now()
	resp, err := c.http.Do(req)
	elapsed := c.now().Sub(start)
	metrics.BackendRequestDuration.WithLabelValues(r.Method).Observe(elapsed.Seconds())

	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.Method, "network_error").Inc()
		c.log.Error().Err(err).
			Str("method", r.Method).
			Str("url", req.URL.String()).
			Dur("latency", elapsed).
			Msg("backend request failed")
		return nil, &NetworkError{Method: r.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.Method, "network_error").Inc()
		return nil, &NetworkError{Method: r.Method, URL: req.URL.String(), Err: err}
	}
	metrics.BackendRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(resp.StatusCode)).Inc()

	return c.inspect(r, req, resp, body, elapsed)
}

// inspect is the single place every response passes through.
func (c *Client) inspect(r Request, req *http.Request, resp *http.Response, body []byte, elapsed time.Duration) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.Debug().
			Str("method", r.Method).
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Dur("latency", elapsed).
			Msg("backend response")
		return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
	}

	c.log.Warn().
		Str("method", r.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("latency", elapsed).
		Msg("backend error response")

	if resp.StatusCode == http.StatusUnauthorized && SessionScoped(r.Path) {
		c.log.Info().Str("path", r.Path).Msg("authentication failed, clearing credential")
		c.mu.Lock()
		c.token = ""
		h := c.expired
		c.mu.Unlock()
		if h != nil {
			h(r.Path)
		}
	}

	return nil, &ServerError{
		Method: r.Method,
		URL:    req.URL.String(),
		Status: resp.StatusCode,
		Body:   body,
		Header: resp.Header,
	}
}

// SessionScoped reports whether a 401 on path invalidates the session.
func SessionScoped(path string) bool {
	p := "/" + strings.TrimLeft(path, "/")
	return strings.Contains(p, "/auth/") || strings.Contains(p, "/admin/")
}

func (c *Client) build(ctx context.Context, r Request) (*http.Request, error) {
	if r.Method == "" {
		return nil, &RequestError{Method: r.Method, Path: r.Path, Err: errors.New("missing method")}
	}
	ref, err := url.Parse(strings.TrimLeft(r.Path, "/"))
	if err != nil {
		return nil, &RequestError{Method: r.Method, Path: r.Path, Err: err}
	}
	u := c.base.JoinPath(ref.Path)
	q := u.Query()
	for k, vs := range ref.Query() {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	body := r.Body
	contentType := r.ContentType
	if r.JSON != nil {
		buf, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, &RequestError{Method: r.Method, Path: r.Path, Err: err}
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, &RequestError{Method: r.Method, Path: r.Path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if strings.HasPrefix(contentType, "multipart/") {
		req.Header.Set("X-Request-Timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	}

	if token := c.Credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		c.log.Debug().Str("method", r.Method).Str("path", r.Path).Msg("request with credential")
	} else {
		c.log.Debug().Str("method", r.Method).Str("path", r.Path).Msg("request without credential")
	}
	return req, nil
}
