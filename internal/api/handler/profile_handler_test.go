package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/service"
	"github.com/carrental/storefront/internal/infrastructure/storage/memory"
)

func profileBackend(t *testing.T, updates *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/user/profile":
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 7, "username": "bob", "email": "bob@example.com", "phone": "555-0100",
				"roles": []string{"ROLE_USER"},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/api/user/profile":
			updates.Add(1)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}
}

func TestProfileHandler_NonAdminFilesEditRequest(t *testing.T) {
	var updates atomic.Int32
	api := newBackend(t, profileBackend(t, &updates))
	edits := service.NewEditRequestService(memory.New(), zerolog.Nop(), fixedNow)
	stub := signedIn(&domain.Identity{ID: "7", Username: "bob", Roles: []string{domain.RoleUser}})
	h := NewProfileHandler(stub, api.Users, edits, 0, zerolog.Nop())

	c, rec := newContext(http.MethodPut, "/profile", `{"phone":"555-0199","email":"bob@example.com"}`)
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if updates.Load() != 0 {
		t.Fatal("non-admin update must not reach the backend")
	}

	var resp profileUpdateView
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.PendingApproval || resp.EditRequest == nil {
		t.Fatalf("expected a pending edit request, got %+v", resp)
	}
	changes := resp.EditRequest.RequestedChanges
	if len(changes) != 1 || changes["phone"] != "555-0199" {
		t.Fatalf("only the changed field should be requested, got %v", changes)
	}
	if resp.EditRequest.OriginalData["phone"] != "555-0100" {
		t.Fatalf("original data should come from the profile, got %v", resp.EditRequest.OriginalData)
	}

	// A second request while the first is pending is refused.
	c, _ = newContext(http.MethodPut, "/profile", `{"phone":"555-0200"}`)
	if err := h.Update(c); !errors.Is(err, domain.ErrEditRequestPending) {
		t.Fatalf("expected ErrEditRequestPending, got %v", err)
	}
}

func TestProfileHandler_AdminUpdatesDirectly(t *testing.T) {
	var updates atomic.Int32
	api := newBackend(t, profileBackend(t, &updates))
	edits := service.NewEditRequestService(memory.New(), zerolog.Nop(), fixedNow)
	stub := signedIn(&domain.Identity{ID: "1", Username: "root", Roles: []string{domain.RoleAdmin}})
	h := NewProfileHandler(stub, api.Users, edits, 0, zerolog.Nop())

	c, rec := newContext(http.MethodPut, "/profile", `{"phone":"555-0199"}`)
	if err := h.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || updates.Load() != 1 {
		t.Fatalf("expected a direct update, got %d (updates=%d)", rec.Code, updates.Load())
	}
	// The update answered with a bare message, so the profile was fetched again.
	if len(stub.applied) != 2 {
		t.Fatalf("expected the refreshed profile to be applied, got %d applies", len(stub.applied))
	}
	if _, err := edits.Current(c.Request().Context(), "1"); !errors.Is(err, domain.ErrEditRequestNotFound) {
		t.Fatalf("admins must not file edit requests, got %v", err)
	}
}

func TestProfileHandler_CancelEditRequest(t *testing.T) {
	var updates atomic.Int32
	api := newBackend(t, profileBackend(t, &updates))
	edits := service.NewEditRequestService(memory.New(), zerolog.Nop(), fixedNow)
	stub := signedIn(&domain.Identity{ID: "7", Username: "bob", Roles: []string{domain.RoleUser}})
	h := NewProfileHandler(stub, api.Users, edits, 0, zerolog.Nop())

	c, _ := newContext(http.MethodDelete, "/profile/edit-request", "")
	if err := h.CancelEditRequest(c); !errors.Is(err, domain.ErrEditRequestNotFound) {
		t.Fatalf("expected not found without a request, got %v", err)
	}

	c, _ = newContext(http.MethodPut, "/profile", `{"phone":"555-0199"}`)
	if err := h.Update(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	c, rec := newContext(http.MethodDelete, "/profile/edit-request", "")
	if err := h.CancelEditRequest(c); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestProfileHandler_RequiresIdentity(t *testing.T) {
	h := NewProfileHandler(&stubSession{}, nil, nil, 0, zerolog.Nop())

	c, _ := newContext(http.MethodPut, "/profile", `{"phone":"555-0199"}`)
	if err := h.Update(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
