package domain

import "encoding/json"

// ImageSource tells the admin car form where the car picture comes from.
type ImageSource string

const (
	ImageSourceURL   ImageSource = "url"
	ImageSourceLocal ImageSource = "local"
)

// Car is passed through the facade unchanged.
type Car struct {
	ID          ID       `json:"id"`
	Brand       string   `json:"brand,omitempty"`
	Make        string   `json:"make,omitempty"`
	Model       string   `json:"model"`
	Type        string   `json:"type,omitempty"`
	Year        int      `json:"year,omitempty"`
	Color       string   `json:"color,omitempty"`
	PricePerDay float64  `json:"pricePerDay"`
	Available   bool     `json:"available"`
	Features    []string `json:"features,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Manufacturer falls back from brand to make, the backend uses either.
func (c Car) Manufacturer() string {
	if c.Brand != "" {
		return c.Brand
	}
	return c.Make
}

func (c Car) DisplayName() string {
	brand := c.Manufacturer()
	if brand == "" {
		return c.Model
	}
	return brand + " " + c.Model
}

// CarSearch carries the optional filters of the car search endpoint.
type CarSearch struct {
	Query     string  `query:"q"`
	Brand     string  `query:"brand"`
	Type      string  `query:"type"`
	MinPrice  float64 `query:"minPrice"`
	MaxPrice  float64 `query:"maxPrice"`
	Available *bool   `query:"available"`
}

// BookingStatus is owned by the backend; the client only displays it.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// BookingRequest is the booking form payload. Dates are calendar days
// formatted as YYYY-MM-DD.
type BookingRequest struct {
	CarID     int64  `json:"carId"     validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate"   validate:"required"`
}

// Booking is passed through the facade unchanged.
type Booking struct {
	ID         ID              `json:"id"`
	StartDate  string          `json:"startDate"`
	EndDate    string          `json:"endDate"`
	Status     BookingStatus   `json:"status,omitempty"`
	TotalPrice float64         `json:"totalPrice,omitempty"`
	Car        *Car            `json:"car,omitempty"`
	User       json.RawMessage `json:"user,omitempty"`
}
