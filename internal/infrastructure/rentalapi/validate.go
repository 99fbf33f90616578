package rentalapi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carrental/storefront/internal/core/domain"
)

const dayLayout = "2006-01-02"

// bookingMessages maps "Field.tag" to the message shown on the booking form.
var bookingMessages = map[string]string{
	"CarID.required":     "Car selection is required",
	"StartDate.required": "Start date is required",
	"EndDate.required":   "End date is required",
}

// BookingValidator checks a booking request before it reaches the network.
type BookingValidator struct {
	v   *validator.Validate
	now func() time.Time
}

// NewBookingValidator returns a validator comparing dates against now.
// A nil clock means time.Now.
func NewBookingValidator(now func() time.Time) *BookingValidator {
	if now == nil {
		now = time.Now
	}
	return &BookingValidator{v: validator.New(), now: now}
}

// Validate returns every violated rule, or nil when the request is valid.
func (b *BookingValidator) Validate(req domain.BookingRequest) []string {
	var errs []string

	if err := b.v.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return []string{err.Error()}
		}
		for _, fe := range ve {
			errs = append(errs, bookingFieldError(fe))
		}
	}

	if req.StartDate == "" || req.EndDate == "" {
		return errs
	}

	start, okStart := parseDay(req.StartDate)
	end, okEnd := parseDay(req.EndDate)
	if !okStart {
		errs = append(errs, "Start date must be a valid date")
	}
	if !okEnd {
		errs = append(errs, "End date must be a valid date")
	}
	if !okStart || !okEnd {
		return errs
	}

	if !end.After(start) {
		errs = append(errs, "End date must be after start date")
	}
	if start.Before(today(b.now())) {
		errs = append(errs, "Start date cannot be in the past")
	}
	return errs
}

func bookingFieldError(fe validator.FieldError) string {
	if msg, ok := bookingMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed validation (%s)", strings.ToLower(fe.Field()), fe.Tag())
}

// parseDay accepts a calendar day or a full RFC 3339 timestamp and returns
// midnight UTC of that day.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// today truncates now to the local calendar day, expressed in UTC so it
// compares with parseDay results.
func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
