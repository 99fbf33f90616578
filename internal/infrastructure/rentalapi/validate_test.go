package rentalapi

import (
	"strings"
	"testing"
	"time"

	"github.com/carrental/storefront/internal/core/domain"
)

func fixedNow() time.Time { return time.Date(2030, 6, 15, 10, 30, 0, 0, time.Local) }

func TestBookingValidator(t *testing.T) {
	v := NewBookingValidator(fixedNow)

	cases := []struct {
		name string
		req  domain.BookingRequest
		want []string
	}{
		{
			name: "valid",
			req:  domain.BookingRequest{CarID: 1, StartDate: "2099-01-01", EndDate: "2099-01-03"},
		},
		{
			name: "start today is allowed",
			req:  domain.BookingRequest{CarID: 1, StartDate: "2030-06-15", EndDate: "2030-06-16"},
		},
		{
			name: "end before start",
			req:  domain.BookingRequest{CarID: 1, StartDate: "2099-01-02", EndDate: "2099-01-01"},
			want: []string{"End date must be after start date"},
		},
		{
			name: "same day",
			req:  domain.BookingRequest{CarID: 1, StartDate: "2099-01-02", EndDate: "2099-01-02"},
			want: []string{"End date must be after start date"},
		},
		{
			name: "past start",
			req:  domain.BookingRequest{CarID: 1, StartDate: "2030-06-14", EndDate: "2030-06-20"},
			want: []string{"Start date cannot be in the past"},
		},
		{
			name: "everything missing",
			req:  domain.BookingRequest{},
			want: []string{"Car selection is required", "Start date is required", "End date is required"},
		},
		{
			name: "garbage date",
			req:  domain.BookingRequest{CarID: 1, StartDate: "tomorrow", EndDate: "2099-01-01"},
			want: []string{"Start date must be a valid date"},
		},
		{
			name: "timestamps accepted",
			req:  domain.BookingRequest{CarID: 2, StartDate: "2099-01-01T09:00:00Z", EndDate: "2099-01-02T09:00:00Z"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := v.Validate(tc.req)
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("Validate() = %q, want %q", got, tc.want)
			}
		})
	}
}

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
)

func TestValidateFile(t *testing.T) {
	if errs := ValidateFile(&File{Name: "a.png", Data: pngHeader}, FileRules{}); len(errs) != 0 {
		t.Fatalf("png should pass: %v", errs)
	}
	if errs := ValidateFile(&File{Name: "a.gif", Data: gifHeader}, FileRules{}); len(errs) != 0 {
		t.Fatalf("gif should pass: %v", errs)
	}
	if errs := ValidateFile(nil, FileRules{}); len(errs) != 1 || errs[0] != "File is required" {
		t.Fatalf("nil file: %v", errs)
	}

	errs := ValidateFile(&File{Name: "a.png", Data: []byte("plain text, named like an image")}, FileRules{})
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "File type must be one of") {
		t.Fatalf("text file: %v", errs)
	}

	big := append(append([]byte{}, pngHeader...), make([]byte, 64)...)
	errs = ValidateFile(&File{Data: big}, FileRules{MaxBytes: 32})
	if len(errs) != 1 || errs[0] != "File size must be less than 32 bytes" {
		t.Fatalf("oversized file: %v", errs)
	}
}

func TestHumanBytes(t *testing.T) {
	if got := humanBytes(DefaultMaxUploadBytes); got != "5MB" {
		t.Fatalf("humanBytes(5MiB) = %q", got)
	}
}
