package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carrental/storefront/internal/core/ports"
)

const dashboardConcurrency = 4

// DashboardReport holds every section that loaded and the error message of
// every section that did not.
type DashboardReport struct {
	Sections map[string]json.RawMessage `json:"sections"`
	Errors   map[string]string          `json:"errors,omitempty"`
}

// Complete reports whether every section loaded.
func (r *DashboardReport) Complete() bool { return len(r.Errors) == 0 }

type DashboardService struct {
	log zerolog.Logger
}

func NewDashboardService(log zerolog.Logger) *DashboardService {
	return &DashboardService{log: log}
}

// Load fetches all sections concurrently. A failing section does not stop the
// others; only cancellation of ctx aborts the whole load.
func (s *DashboardService) Load(ctx context.Context, sections []ports.DashboardSection) (*DashboardReport, error) {
	report := &DashboardReport{
		Sections: make(map[string]json.RawMessage, len(sections)),
		Errors:   make(map[string]string),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dashboardConcurrency)
	for _, sec := range sections {
		g.Go(func() error {
			data, err := sec.Fetch(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				report.Errors[sec.Name] = err.Error()
				s.log.Warn().Err(err).Str("section", sec.Name).Msg("dashboard section failed")
				return nil
			}
			report.Sections[sec.Name] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("loaded", len(report.Sections)).
		Int("failed", len(report.Errors)).
		Msg("dashboard loaded")
	return report, nil
}
