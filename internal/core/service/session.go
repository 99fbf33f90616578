package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/api/metrics"
	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
)

const (
	MsgSessionExpired = "Session expired. Please login again."
	msgLoginFailed    = "Login failed. Please check your credentials."

	defaultRedirectDelay = time.Second
	defaultLoginPath     = "/login"
)

// SessionOptions tunes the store. Zero values take the defaults.
type SessionOptions struct {
	// RedirectDelay lets feedback render before a forced logout navigates away.
	RedirectDelay time.Duration
	LoginPath     string
	Now           func() time.Time
	// Schedule runs f after d. Defaults to time.AfterFunc.
	Schedule func(d time.Duration, f func())
}

// SessionStore owns the authenticated identity and its credential.
//
// Every transition writes in the same order: durable storage, then the
// request header, then memory. The mutex is never held across a backend
// call, so the 401 handler can call Expire from inside any request.
type SessionStore struct {
	storage ports.Storage
	backend ports.AuthBackend
	creds   ports.CredentialHolder
	nav     ports.Navigator
	log     zerolog.Logger
	opts    SessionOptions

	mu       sync.RWMutex
	token    string
	identity *domain.Identity
	loading  bool
	errMsg   string
	// epoch changes on every login, logout and expiry; late responses from an
	// older epoch are discarded.
	epoch uint64
	// restoring is closed when the running restore finishes; nil otherwise.
	restoring chan struct{}

	restoreOnce sync.Once
	restoreErr  error
}

var _ ports.SessionManager = (*SessionStore)(nil)

func NewSessionStore(
	storage ports.Storage,
	backend ports.AuthBackend,
	creds ports.CredentialHolder,
	nav ports.Navigator,
	log zerolog.Logger,
	opts SessionOptions,
) *SessionStore {
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = defaultRedirectDelay
	}
	if opts.LoginPath == "" {
		opts.LoginPath = defaultLoginPath
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Schedule == nil {
		opts.Schedule = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	return &SessionStore{
		storage: storage,
		backend: backend,
		creds:   creds,
		nav:     nav,
		log:     log,
		opts:    opts,
		loading: true,
	}
}

// State derives the session view. It is never cached.
func (s *SessionStore) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.SessionState{
		IsAuthenticated: s.identity != nil,
		Loading:         s.loading,
		Error:           s.errMsg,
		Epoch:           s.epoch,
	}
	if s.identity != nil {
		id := *s.identity
		id.Roles = append([]string(nil), s.identity.Roles...)
		st.Identity = &id
		st.IsAdmin = id.IsAdmin()
	}
	return st
}

// Restore rebuilds the session from durable storage. Only the first call does
// any work; later calls return the first result. A rejected credential ends
// in the anonymous state with an error message, not in a returned error;
// only a storage failure is returned.
func (s *SessionStore) Restore(ctx context.Context) error {
	s.restoreOnce.Do(func() {
		done := make(chan struct{})
		s.mu.Lock()
		s.restoring = done
		s.mu.Unlock()

		s.restoreErr = s.restore(ctx)

		s.mu.Lock()
		s.restoring = nil
		s.mu.Unlock()
		close(done)
	})
	return s.restoreErr
}

func (s *SessionStore) restore(ctx context.Context) error {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()

	// 1. Read the stored credential.
	token, ok, err := s.storage.Get(ctx, ports.KeyCredential)
	if err != nil {
		s.log.Error().Err(err).Msg("session restore: storage unavailable")
		s.finishAnonymous(epoch, "")
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok || strings.TrimSpace(token) == "" {
		if err := s.storage.Remove(ctx, ports.KeyIdentity); err != nil {
			s.log.Warn().Err(err).Msg("session restore: failed to drop orphan identity")
		}
		s.finishAnonymous(epoch, "")
		s.log.Debug().Msg("no stored credential")
		return nil
	}

	// 2. An expired JWT never reaches the network.
	if credentialExpired(token, s.opts.Now()) {
		s.log.Info().Msg("stored credential expired")
		return s.failRestore(ctx, epoch, domain.ErrNotAuthenticated)
	}

	// 3. Validate against the backend with the credential attached.
	s.mu.RLock()
	superseded := s.epoch != epoch
	s.mu.RUnlock()
	if superseded {
		s.finishAnonymous(epoch, "")
		s.log.Debug().Msg("session restore superseded before validation")
		return nil
	}
	s.creds.SetCredential(token)
	raw, err := s.backend.CurrentUser(ctx)
	if err != nil {
		return s.failRestore(ctx, epoch, err)
	}
	id, err := domain.NormalizeIdentity(raw)
	if err != nil {
		return s.failRestore(ctx, epoch, err)
	}

	// 4. Persist, header, memory.
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug().Msg("session restore superseded, response discarded")
		return nil
	}
	if err := s.persist(ctx, token, id); err != nil {
		s.mu.Unlock()
		return s.failRestore(ctx, epoch, err)
	}
	s.creds.SetCredential(token)
	s.token = token
	s.identity = id
	s.loading = false
	s.errMsg = ""
	s.epoch++
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues("restore_ok").Inc()
	s.log.Info().Str("user", id.Username).Bool("admin", id.IsAdmin()).Msg("session restored")
	return nil
}

// failRestore drops the rejected credential. A session started after the
// restore began owns storage and the header, so both are left alone.
func (s *SessionStore) failRestore(ctx context.Context, epoch uint64, cause error) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.loading = false
		s.mu.Unlock()
		s.log.Debug().Err(cause).Msg("session restore failed after being superseded, newer session kept")
		return nil
	}
	if err := s.storage.Remove(ctx, ports.KeyCredential, ports.KeyIdentity); err != nil {
		s.log.Warn().Err(err).Msg("session restore: failed to remove stored session")
	}
	s.creds.ClearCredential()
	s.token = ""
	s.identity = nil
	s.errMsg = MsgSessionExpired
	s.loading = false
	s.mu.Unlock()

	metrics.SessionTransitionsTotal.WithLabelValues("restore_failed").Inc()
	s.log.Warn().Err(cause).Msg("session restore failed")
	return nil
}

func (s *SessionStore) finishAnonymous(epoch uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.epoch != epoch {
		return
	}
	s.token = ""
	s.identity = nil
	s.errMsg = msg
}

// Login authenticates, persists the session and returns the identity. A
// restore in flight is waited for first.
func (s *SessionStore) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	if err := s.awaitRestore(ctx); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	// 1. Exchange credentials.
	raw, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.setError(errorMessage(err, msgLoginFailed))
		s.log.Info().Err(err).Str("user", creds.Username).Msg("login rejected")
		return nil, err
	}

	// 2. Detect the response shape.
	token, identityRaw, err := parseLoginResponse(raw)
	if err != nil {
		s.setError(msgLoginFailed)
		s.log.Warn().Err(err).Msg("login response not understood")
		return nil, fmt.Errorf("login: %w", err)
	}

	// 3. Raw-token shape: the identity comes from the current-user endpoint.
	if identityRaw == nil {
		s.creds.SetCredential(token)
		identityRaw, err = s.backend.CurrentUser(ctx)
		if err != nil {
			s.creds.ClearCredential()
			s.setError(errorMessage(err, msgLoginFailed))
			return nil, fmt.Errorf("login: fetch current user: %w", err)
		}
	}

	id, err := domain.NormalizeIdentity(identityRaw)
	if err != nil {
		s.creds.ClearCredential()
		s.setError(msgLoginFailed)
		return nil, fmt.Errorf("login: %w", err)
	}

	// 4. Persist, header, memory.
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.persist(ctx, token, id); err != nil {
		s.creds.ClearCredential()
		s.errMsg = msgLoginFailed
		return nil, fmt.Errorf("login: %w", err)
	}
	s.creds.SetCredential(token)
	s.token = token
	s.identity = id
	s.loading = false
	s.errMsg = ""
	s.epoch++

	metrics.SessionTransitionsTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("user", id.Username).Bool("admin", id.IsAdmin()).Msg("login succeeded")
	return cloneIdentity(id), nil
}

// Logout notifies the backend on a best-effort basis and clears the session.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	user := usernameOf(s.identity)
	s.token = ""
	s.identity = nil
	s.errMsg = ""
	s.loading = false
	s.epoch++
	err := s.storage.Remove(ctx, ports.KeyCredential, ports.KeyIdentity)
	s.mu.Unlock()

	// Memory is already cleared so a 401 from the logout call is not treated
	// as an expiry.
	if token != "" {
		if lerr := s.backend.Logout(ctx); lerr != nil {
			s.log.Warn().Err(lerr).Msg("backend logout failed, session cleared locally")
		}
	}
	s.creds.ClearCredential()

	metrics.SessionTransitionsTotal.WithLabelValues("logout").Inc()
	s.log.Info().Str("user", user).Msg("logged out")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Expire ends the session after an authentication failure and schedules the
// navigation to the login view. A call without an active session only makes
// sure nothing is left in storage.
func (s *SessionStore) Expire() {
	s.mu.Lock()
	had := s.token != "" || s.identity != nil
	user := usernameOf(s.identity)
	if had {
		s.token = ""
		s.identity = nil
		s.errMsg = MsgSessionExpired
		s.epoch++
	}
	err := s.storage.Remove(context.Background(), ports.KeyCredential, ports.KeyIdentity)
	s.mu.Unlock()

	s.creds.ClearCredential()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to remove expired session from storage")
	}
	if !had {
		return
	}

	metrics.SessionTransitionsTotal.WithLabelValues("expired").Inc()
	s.log.Warn().Str("user", user).Dur("redirect_in", s.opts.RedirectDelay).Msg("session expired")

	target := s.opts.LoginPath + "?" + url.Values{"session": {"expired"}}.Encode()
	s.opts.Schedule(s.opts.RedirectDelay, func() { s.nav.Navigate(target) })
}

// ApplyProfile replaces the identity with a freshly fetched profile. epoch is
// the State().Epoch read before the profile was requested. Within a session
// the last call to arrive wins; a profile from an earlier session, or one
// naming another user, is dropped.
func (s *SessionStore) ApplyProfile(ctx context.Context, epoch uint64, raw json.RawMessage) (*domain.Identity, error) {
	id, err := domain.NormalizeIdentity(raw)
	if err != nil {
		return nil, fmt.Errorf("apply profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		s.log.Debug().Msg("profile arrived after session ended, discarded")
		return nil, domain.ErrNotAuthenticated
	}
	if s.epoch != epoch {
		s.log.Debug().Str("user", id.Username).Msg("profile from an earlier session, discarded")
		return nil, domain.ErrSessionChanged
	}
	if s.identity != nil && s.identity.ID != "" && id.ID != "" && id.ID != s.identity.ID {
		s.log.Warn().Str("current", s.identity.ID.String()).Str("profile", id.ID.String()).Msg("profile names another user, discarded")
		return nil, domain.ErrSessionChanged
	}
	encoded, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("apply profile: %w", err)
	}
	if err := s.storage.Put(ctx, map[string]string{ports.KeyIdentity: string(encoded)}); err != nil {
		return nil, fmt.Errorf("apply profile: %w", err)
	}
	s.identity = id
	return cloneIdentity(id), nil
}

func (s *SessionStore) awaitRestore(ctx context.Context) error {
	s.mu.RLock()
	done := s.restoring
	s.mu.RUnlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClearError drops the last user-visible error.
func (s *SessionStore) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// persist writes both keys together. Callers hold s.mu.
func (s *SessionStore) persist(ctx context.Context, token string, id *domain.Identity) error {
	encoded, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return s.storage.Put(ctx, map[string]string{
		ports.KeyCredential: token,
		ports.KeyIdentity:   string(encoded),
	})
}

func (s *SessionStore) setError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.loading = false
	s.mu.Unlock()
}

// parseLoginResponse recognises the accepted signin shapes:
//
//	{"token": "...", "user": {...}}
//	{"token": "...", "username": "...", ...}
//	{"accessToken": "...", "username": "...", ...}
//	"raw-token"
//
// A nil identity means only a token was returned.
func parseLoginResponse(raw json.RawMessage) (string, json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, domain.ErrMissingCredential
	}

	switch raw[0] {
	case '"':
		var token string
		if err := json.Unmarshal(raw, &token); err != nil {
			return "", nil, err
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return "", nil, domain.ErrMissingCredential
		}
		return token, nil, nil

	case '{':
		var body struct {
			Token       string          `json:"token"`
			AccessToken string          `json:"accessToken"`
			User        json.RawMessage `json:"user"`
			Username    string          `json:"username"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", nil, err
		}
		token := body.Token
		if token == "" {
			token = body.AccessToken
		}
		if token == "" {
			return "", nil, domain.ErrMissingCredential
		}
		if u := bytes.TrimSpace(body.User); len(u) > 0 && u[0] == '{' {
			return token, u, nil
		}
		if body.Username != "" {
			return token, raw, nil
		}
		return token, nil, nil

	default:
		return "", nil, fmt.Errorf("%w: unexpected payload", domain.ErrMissingCredential)
	}
}

// credentialExpired inspects the exp claim of a JWT without verifying it.
// Opaque credentials are left for the backend to judge.
func credentialExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

func usernameOf(id *domain.Identity) string {
	if id == nil {
		return ""
	}
	return id.Username
}

func cloneIdentity(id *domain.Identity) *domain.Identity {
	c := *id
	c.Roles = append([]string(nil), id.Roles...)
	return &c
}
