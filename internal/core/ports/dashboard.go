package ports

import (
	"context"
	"encoding/json"
)

// DashboardSection is one independently fetched block of the admin dashboard.
type DashboardSection struct {
	Name  string
	Fetch func(ctx context.Context) (json.RawMessage, error)
}
