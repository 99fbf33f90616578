package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/carrental/storefront/internal/core/ports"
)

var _ ports.Navigator = (*Navigator)(nil)

// Navigator holds the next forced navigation until a request picks it up.
// Only the latest location is kept.
type Navigator struct {
	mu      sync.Mutex
	pending string
}

func NewNavigator() *Navigator { return &Navigator{} }

func (n *Navigator) Navigate(location string) {
	n.mu.Lock()
	n.pending = location
	n.mu.Unlock()
}

// Take returns and clears the pending location.
func (n *Navigator) Take() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	loc := n.pending
	n.pending = ""
	return loc, loc != ""
}

// NavigationConfig configures the Navigation middleware.
type NavigationConfig struct {
	Navigator *Navigator
	// Skipper exempts requests that must never consume a navigation, such as
	// probes.
	Skipper echomiddleware.Skipper
}

// Navigation redirects the next request to a pending location. Requests that
// already target the location's path consume it without a redirect.
func Navigation(n *Navigator) echo.MiddlewareFunc {
	return NavigationWithConfig(NavigationConfig{Navigator: n})
}

func NavigationWithConfig(cfg NavigationConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			loc, ok := cfg.Navigator.Take()
			if !ok {
				return next(c)
			}
			target := loc
			if i := strings.IndexByte(target, '?'); i >= 0 {
				target = target[:i]
			}
			if c.Request().URL.Path == target {
				return next(c)
			}
			return c.Redirect(http.StatusFound, loc)
		}
	}
}
