package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/core/domain"
	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

// currentIdentity returns the signed-in identity. Guarded routes always have
// one; a missing identity means the session ended between the guard and the
// handler.
func currentIdentity(session ports.SessionReader) (*domain.Identity, error) {
	st := session.State()
	if !st.IsAuthenticated || st.Identity == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return st.Identity, nil
}

// bindValid binds the request body into v and runs the echo validator.
func bindValid(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(v)
}

// listView wraps a normalized collection.
type listView[T any] struct {
	Success bool `json:"success"`
	Items   []T  `json:"items"`
	Count   int  `json:"count"`
}

func newListView[T any](items []T) listView[T] {
	if items == nil {
		items = []T{}
	}
	return listView[T]{Success: true, Items: items, Count: len(items)}
}

// renderResult writes a facade result as is.
func renderResult(c echo.Context, status int, res *rentalapi.Result) error {
	return c.JSON(status, res)
}

// renderList unwraps a collection result with fn before writing it.
func renderList[T any](c echo.Context, res *rentalapi.Result, fn func(json.RawMessage) ([]T, error)) error {
	items, err := fn(res.Data)
	if err != nil {
		return rentalapi.NormalizeError(err, "Unexpected response from server.")
	}
	return c.JSON(http.StatusOK, newListView(items))
}

// readUpload reads the multipart file under field. Only maxBytes+1 bytes are
// read so the size check downstream still sees an oversized file. A missing
// file yields nil.
func readUpload(c echo.Context, field string, maxBytes int64) (*rentalapi.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &rentalapi.File{Name: fh.Filename, Data: data}, nil
}
