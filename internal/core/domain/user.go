package domain

import (
	"encoding/json"
	"time"
)

// User is the admin view of an account.
type User struct {
	ID        ID              `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email,omitempty"`
	FirstName string          `json:"firstName,omitempty"`
	LastName  string          `json:"lastName,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Roles     json.RawMessage `json:"roles,omitempty"`
	Active    *bool           `json:"active,omitempty"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
}

// ProfileUpdate is a partial profile change. Empty fields are left untouched.
type ProfileUpdate struct {
	Username  string `json:"username,omitempty"  validate:"omitempty,min=3"`
	Email     string `json:"email,omitempty"     validate:"omitempty,email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Fields flattens the update into the map stored on an edit request.
func (p ProfileUpdate) Fields() map[string]string {
	out := make(map[string]string, 5)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("username", p.Username)
	set("email", p.Email)
	set("firstName", p.FirstName)
	set("lastName", p.LastName)
	set("phone", p.Phone)
	return out
}

// PasswordChange is the change-password payload.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
}

// Notification is passed through the facade unchanged.
type Notification struct {
	ID        ID         `json:"id"`
	Title     string     `json:"title,omitempty"`
	Message   string     `json:"message"`
	Type      string     `json:"type,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Payment is passed through the facade unchanged.
type Payment struct {
	ID        ID      `json:"id"`
	BookingID ID      `json:"bookingId,omitempty"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// PaymentMethod is a stored card or wallet reference.
type PaymentMethod struct {
	ID    ID     `json:"id,omitempty"`
	Type  string `json:"type"`
	Last4 string `json:"last4,omitempty"`
	Token string `json:"token,omitempty"`
}
