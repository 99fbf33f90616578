package domain

import "time"

// EditRequestStatus represents the lifecycle state of a profile edit request.
type EditRequestStatus string

const (
	EditPending  EditRequestStatus = "pending"
	EditApproved EditRequestStatus = "approved"
	EditRejected EditRequestStatus = "rejected"
)

// validEditTransitions defines the allowed state machine transitions.
// Approved and rejected are terminal.
var validEditTransitions = map[EditRequestStatus][]EditRequestStatus{
	EditPending: {EditApproved, EditRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s EditRequestStatus) CanTransitionTo(next EditRequestStatus) bool {
	for _, allowed := range validEditTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s EditRequestStatus) Terminal() bool {
	return len(validEditTransitions[s]) == 0
}

// EditRequest is a non-admin profile change awaiting admin approval.
type EditRequest struct {
	ID               string            `json:"id"`
	UserID           ID                `json:"userId"`
	Username         string            `json:"username,omitempty"`
	RequestedChanges map[string]string `json:"requestedChanges"`
	OriginalData     map[string]string `json:"originalData"`
	Timestamp        time.Time         `json:"timestamp"`
	Status           EditRequestStatus `json:"status"`
	Reason           string            `json:"reason,omitempty"`
	ResolvedAt       *time.Time        `json:"resolvedAt,omitempty"`
}

// AdminNotification announces an event that needs an administrator.
type AdminNotification struct {
	Type      string    `json:"type"`
	UserID    ID        `json:"userId"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

const NotificationProfileEdit = "profile_edit_request"
