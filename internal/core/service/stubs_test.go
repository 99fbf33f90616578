package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/carrental/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs for the ports
// ---------------------------------------------------------------------------

type stubStorage struct {
	mu      sync.Mutex
	values  map[string]string
	getErr  error
	putErr  error
	removed [][]string
}

func newStubStorage() *stubStorage {
	return &stubStorage{values: make(map[string]string)}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *stubStorage) Put(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *stubStorage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, keys)
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *stubStorage) Ping(context.Context) error { return nil }
func (s *stubStorage) Close() error               { return nil }

func (s *stubStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

type stubBackend struct {
	mu          sync.Mutex
	loginBody   string
	loginErr    error
	meBody      string
	meErr       error
	logoutErr   error
	meCalls     int
	logoutCalls int
	// onMe runs inside CurrentUser before it returns, e.g. to simulate a 401.
	onMe func()
}

func (b *stubBackend) Login(context.Context, domain.Credentials) (json.RawMessage, error) {
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return json.RawMessage(b.loginBody), nil
}

func (b *stubBackend) CurrentUser(context.Context) (json.RawMessage, error) {
	b.mu.Lock()
	b.meCalls++
	hook := b.onMe
	b.mu.Unlock()
	if hook != nil {
		hook()
	}
	if b.meErr != nil {
		return nil, b.meErr
	}
	return json.RawMessage(b.meBody), nil
}

func (b *stubBackend) Logout(context.Context) error {
	b.mu.Lock()
	b.logoutCalls++
	b.mu.Unlock()
	return b.logoutErr
}

type stubCreds struct {
	mu    sync.Mutex
	token string
	log   []string
}

func (c *stubCreds) SetCredential(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.log = append(c.log, "set:"+token)
}

func (c *stubCreds) ClearCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.log = append(c.log, "clear")
}

func (c *stubCreds) current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

type stubNav struct {
	mu        sync.Mutex
	locations []string
}

func (n *stubNav) Navigate(location string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.locations = append(n.locations, location)
}

func (n *stubNav) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.locations...)
}

var errBackend = errors.New("Invalid username or password")
