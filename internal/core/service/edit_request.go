package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
)

// EditRequestService keeps non-admin profile edit requests in client storage
// until the backend offers a workflow for them. One request per user; the
// admin notification list indexes them.
type EditRequestService struct {
	storage ports.Storage
	log     zerolog.Logger
	now     func() time.Time

	// mu serialises read-modify-write cycles on the notification list.
	mu sync.Mutex
}

var _ ports.EditRequests = (*EditRequestService)(nil)

func NewEditRequestService(storage ports.Storage, log zerolog.Logger, now func() time.Time) *EditRequestService {
	if now == nil {
		now = time.Now
	}
	return &EditRequestService{storage: storage, log: log, now: now}
}

// Submit records the fields of update that differ from original. A user may
// hold a single pending request.
func (s *EditRequestService) Submit(ctx context.Context, user *domain.Identity, update domain.ProfileUpdate, original map[string]string) (*domain.EditRequest, error) {
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	changes := make(map[string]string)
	for k, v := range update.Fields() {
		if original[k] != v {
			changes[k] = v
		}
	}
	if len(changes) == 0 {
		return nil, domain.ErrNoChanges
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. One pending request per user.
	existing, err := s.load(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("submit edit request: %w", err)
	}
	if existing != nil && existing.Status == domain.EditPending {
		return nil, domain.ErrEditRequestPending
	}

	// 2. Build the request and its admin notification.
	req := &domain.EditRequest{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		Username:         user.Username,
		RequestedChanges: changes,
		OriginalData:     original,
		Timestamp:        s.now().UTC(),
		Status:           domain.EditPending,
	}
	notes, err := s.notifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit edit request: %w", err)
	}
	notes = append(notes, domain.AdminNotification{
		Type:      domain.NotificationProfileEdit,
		UserID:    user.ID,
		RequestID: req.ID,
		Timestamp: req.Timestamp,
	})

	// 3. Write both keys together.
	if err := s.save(ctx, req, notes); err != nil {
		return nil, fmt.Errorf("submit edit request: %w", err)
	}

	s.log.Info().
		Str("user", user.Username).
		Str("request_id", req.ID).
		Int("fields", len(changes)).
		Msg("profile edit request submitted")
	return req, nil
}

// Current returns the user's latest request in any state.
func (s *EditRequestService) Current(ctx context.Context, userID domain.ID) (*domain.EditRequest, error) {
	req, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrEditRequestNotFound
	}
	return req, nil
}

// Cancel withdraws a pending request.
func (s *EditRequestService) Cancel(ctx context.Context, userID domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.load(ctx, userID)
	if err != nil {
		return fmt.Errorf("cancel edit request: %w", err)
	}
	if req == nil {
		return domain.ErrEditRequestNotFound
	}
	if req.Status != domain.EditPending {
		return fmt.Errorf("cancel edit request: %w (status %s)", domain.ErrInvalidTransition, req.Status)
	}

	notes, err := s.notifications(ctx)
	if err != nil {
		return fmt.Errorf("cancel edit request: %w", err)
	}
	kept := notes[:0]
	for _, n := range notes {
		if n.RequestID != req.ID {
			kept = append(kept, n)
		}
	}
	encoded, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("cancel edit request: %w", err)
	}
	if err := s.storage.Put(ctx, map[string]string{ports.KeyAdminNotifications: string(encoded)}); err != nil {
		return fmt.Errorf("cancel edit request: %w", err)
	}
	if err := s.storage.Remove(ctx, ports.EditRequestKey(userID.String())); err != nil {
		return fmt.Errorf("cancel edit request: %w", err)
	}

	s.log.Info().Str("user_id", userID.String()).Str("request_id", req.ID).Msg("profile edit request cancelled")
	return nil
}

// ListPending returns pending requests, oldest first.
func (s *EditRequestService) ListPending(ctx context.Context) ([]domain.EditRequest, error) {
	notes, err := s.notifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list edit requests: %w", err)
	}

	seen := make(map[domain.ID]struct{}, len(notes))
	out := make([]domain.EditRequest, 0, len(notes))
	for _, n := range notes {
		if n.Type != domain.NotificationProfileEdit {
			continue
		}
		if _, dup := seen[n.UserID]; dup {
			continue
		}
		seen[n.UserID] = struct{}{}

		req, err := s.load(ctx, n.UserID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", n.UserID.String()).Msg("skipping unreadable edit request")
			continue
		}
		if req != nil && req.Status == domain.EditPending {
			out = append(out, *req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Approve resolves the user's pending request as approved.
func (s *EditRequestService) Approve(ctx context.Context, userID domain.ID) (*domain.EditRequest, error) {
	return s.resolve(ctx, userID, domain.EditApproved, "")
}

// Reject resolves the user's pending request as rejected.
func (s *EditRequestService) Reject(ctx context.Context, userID domain.ID, reason string) (*domain.EditRequest, error) {
	return s.resolve(ctx, userID, domain.EditRejected, reason)
}

func (s *EditRequestService) resolve(ctx context.Context, userID domain.ID, next domain.EditRequestStatus, reason string) (*domain.EditRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve edit request: %w", err)
	}
	if req == nil {
		return nil, domain.ErrEditRequestNotFound
	}
	if !req.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("resolve edit request: %w (from %s to %s)", domain.ErrInvalidTransition, req.Status, next)
	}

	now := s.now().UTC()
	req.Status = next
	req.Reason = reason
	req.ResolvedAt = &now

	notes, err := s.notifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve edit request: %w", err)
	}
	for i := range notes {
		if notes[i].RequestID == req.ID {
			notes[i].Read = true
		}
	}
	if err := s.save(ctx, req, notes); err != nil {
		return nil, fmt.Errorf("resolve edit request: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("request_id", req.ID).
		Str("status", string(next)).
		Msg("profile edit request resolved")
	return req, nil
}

func (s *EditRequestService) load(ctx context.Context, userID domain.ID) (*domain.EditRequest, error) {
	raw, ok, err := s.storage.Get(ctx, ports.EditRequestKey(userID.String()))
	if err != nil || !ok {
		return nil, err
	}
	var req domain.EditRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf("decode edit request: %w", err)
	}
	return &req, nil
}

func (s *EditRequestService) notifications(ctx context.Context) ([]domain.AdminNotification, error) {
	raw, ok, err := s.storage.Get(ctx, ports.KeyAdminNotifications)
	if err != nil || !ok {
		return nil, err
	}
	var notes []domain.AdminNotification
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		s.log.Warn().Err(err).Msg("admin notification list unreadable, starting over")
		return nil, nil
	}
	return notes, nil
}

func (s *EditRequestService) save(ctx context.Context, req *domain.EditRequest, notes []domain.AdminNotification) error {
	encodedReq, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if notes == nil {
		notes = []domain.AdminNotification{}
	}
	encodedNotes, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	return s.storage.Put(ctx, map[string]string{
		ports.EditRequestKey(req.UserID.String()): string(encodedReq),
		ports.KeyAdminNotifications:               string(encodedNotes),
	})
}
