package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/api/metrics"
	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/core/service"
)

// loadingView is rendered while the session is still being restored.
type loadingView struct {
	Loading bool   `json:"loading"`
	Message string `json:"message"`
}

// accessDeniedView is rendered in place of an admin page for non-admins.
type accessDeniedView struct {
	Success  bool   `json:"success"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// Guard renders the route guard decision for every request it wraps.
func Guard(session ports.SessionReader, req service.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := service.Guard(req, session.State(), c.Request().URL.RequestURI())
			metrics.GuardDecisionsTotal.WithLabelValues(string(d.Outcome)).Inc()

			switch d.Outcome {
			case service.OutcomeWait:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, loadingView{Loading: true, Message: d.Message})
			case service.OutcomeRedirect:
				return c.Redirect(http.StatusFound, d.Location)
			case service.OutcomeDeny:
				return c.JSON(http.StatusForbidden, accessDeniedView{
					Title:    "Access Denied",
					Message:  d.Message,
					Username: d.Username,
				})
			default:
				return next(c)
			}
		}
	}
}

// RequireAuth admits any signed-in user.
func RequireAuth(session ports.SessionReader) echo.MiddlewareFunc {
	return Guard(session, service.Requirement{RequireAuth: true})
}

// AdminOnly admits administrators only.
func AdminOnly(session ports.SessionReader) echo.MiddlewareFunc {
	return Guard(session, service.Requirement{RequireAuth: true, AdminOnly: true})
}
