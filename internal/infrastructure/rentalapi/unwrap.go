package rentalapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/carrental/storefront/internal/core/domain"
)

// Collection responses come in three shapes:
//
//	[ {...}, ... ]           bare array
//	{ "data": [ {...} ] }    wrapped array (also {"data": {...}})
//	{ ... }                  the raw item itself, returned as a one-element list
//
// null or an empty body is an empty list.
func unwrapList[T any](data json.RawMessage) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, nil
	}

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("unwrap list: %w", err)
		}
		return items, nil
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &env); err == nil && len(bytes.TrimSpace(env.Data)) > 0 {
			return unwrapList[T](env.Data)
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("unwrap item: %w", err)
		}
		return []T{item}, nil
	default:
		return nil, fmt.Errorf("unwrap list: unexpected payload %.20q", data)
	}
}

// Single-item responses are either {"data": {...}} or the raw object.
func unwrapOne[T any](data json.RawMessage) (*T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("unwrap item: expected object, got %.20q", data)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err == nil {
		inner := bytes.TrimSpace(env.Data)
		if len(inner) > 0 && inner[0] == '{' {
			data = inner
		}
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("unwrap item: %w", err)
	}
	return &item, nil
}

func UnwrapCars(data json.RawMessage) ([]domain.Car, error) { return unwrapList[domain.Car](data) }

func UnwrapCar(data json.RawMessage) (*domain.Car, error) { return unwrapOne[domain.Car](data) }

func UnwrapBookings(data json.RawMessage) ([]domain.Booking, error) {
	return unwrapList[domain.Booking](data)
}

func UnwrapBooking(data json.RawMessage) (*domain.Booking, error) {
	return unwrapOne[domain.Booking](data)
}

func UnwrapUsers(data json.RawMessage) ([]domain.User, error) { return unwrapList[domain.User](data) }

func UnwrapNotifications(data json.RawMessage) ([]domain.Notification, error) {
	return unwrapList[domain.Notification](data)
}

func UnwrapPayments(data json.RawMessage) ([]domain.Payment, error) {
	return unwrapList[domain.Payment](data)
}

func UnwrapEditRequests(data json.RawMessage) ([]domain.EditRequest, error) {
	return unwrapList[domain.EditRequest](data)
}
