package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/carrental/storefront/internal/api/handler"
	"github.com/carrental/storefront/internal/api/middleware"
	"github.com/carrental/storefront/internal/core/ports"
	"github.com/carrental/storefront/internal/core/service"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

// Deps are the collaborators the storefront views need.
type Deps struct {
	Session   ports.SessionManager
	API       *rentalapi.Client
	Edits     ports.EditRequests
	Dashboard *service.DashboardService
	Navigator *middleware.Navigator
	// UploadMaxBytes bounds files posted to the storefront.
	UploadMaxBytes int64
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("storefront"))
	e.Use(middleware.NavigationWithConfig(middleware.NavigationConfig{
		Navigator: d.Navigator,
		Skipper:   opsRequest,
	}))

	// --- Dependencies ---
	sessionHandler := handler.NewSessionHandler(d.Session, d.API.Auth, d.Log)
	carHandler := handler.NewCarHandler(d.API.Cars, d.UploadMaxBytes)
	bookingHandler := handler.NewBookingHandler(d.API.Bookings)
	profileHandler := handler.NewProfileHandler(d.Session, d.API.Users, d.Edits, d.UploadMaxBytes, d.Log)
	notificationHandler := handler.NewNotificationHandler(d.API.Notifications)
	adminHandler := handler.NewAdminHandler(d.API, d.Edits, d.Dashboard, d.Log)
	uploadHandler := handler.NewUploadHandler(d.API.Uploads, d.UploadMaxBytes)

	// --- Public views ---
	e.POST("/login", sessionHandler.Login)
	e.POST("/signup", sessionHandler.Signup)
	e.POST("/logout", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Session)
	e.DELETE("/session/error", sessionHandler.DismissError)
	e.POST("/password/forgot", sessionHandler.ForgotPassword)
	e.POST("/password/reset", sessionHandler.ResetPassword)

	e.GET("/cars", carHandler.List)
	e.GET("/cars/search", carHandler.Search)
	e.GET("/cars/:id", carHandler.Get)

	// --- Signed-in views ---
	auth := middleware.RequireAuth(d.Session)
	e.POST("/bookings", bookingHandler.Create, auth)
	e.GET("/bookings", bookingHandler.Mine, auth)
	e.GET("/bookings/:id", bookingHandler.Get, auth)
	e.DELETE("/bookings/:id", bookingHandler.Cancel, auth)

	e.GET("/profile", profileHandler.Get, auth)
	e.PUT("/profile", profileHandler.Update, auth)
	e.GET("/profile/edit-request", profileHandler.EditRequest, auth)
	e.DELETE("/profile/edit-request", profileHandler.CancelEditRequest, auth)
	e.PUT("/profile/password", profileHandler.ChangePassword, auth)
	e.POST("/profile/avatar", profileHandler.UploadAvatar, auth)

	e.GET("/notifications", notificationHandler.Mine, auth)
	e.GET("/notifications/unread-count", notificationHandler.UnreadCount, auth)
	e.PUT("/notifications/read-all", notificationHandler.MarkAllRead, auth)
	e.PUT("/notifications/:id/read", notificationHandler.MarkRead, auth)
	e.DELETE("/notifications/:id", notificationHandler.Delete, auth)

	// --- Admin views ---
	admin := e.Group("/admin", middleware.AdminOnly(d.Session))
	admin.GET("/dashboard", adminHandler.Dashboard)

	admin.GET("/cars", carHandler.List)
	admin.POST("/cars", carHandler.Create)
	admin.PUT("/cars/:id", carHandler.Update)
	admin.DELETE("/cars/:id", carHandler.Delete)
	admin.PATCH("/cars/:id/availability", carHandler.ToggleAvailability)
	admin.POST("/cars/:id/features", carHandler.AddFeature)
	admin.DELETE("/cars/:id/features", carHandler.RemoveFeature)

	admin.GET("/bookings", bookingHandler.All)

	admin.GET("/users", adminHandler.Users)
	admin.PATCH("/users/:id/status", adminHandler.ToggleUserStatus)
	admin.PUT("/users/:id/roles", adminHandler.UpdateUserRoles)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	admin.GET("/edit-requests", adminHandler.EditRequests)
	admin.POST("/edit-requests/:userId/approve", adminHandler.ApproveEditRequest)
	admin.POST("/edit-requests/:userId/reject", adminHandler.RejectEditRequest)

	admin.POST("/uploads", uploadHandler.Upload)
	admin.GET("/uploads", uploadHandler.List)
	admin.DELETE("/uploads", uploadHandler.Delete)

	admin.GET("/payments", adminHandler.Payments)
	admin.POST("/payments/:id/refund", adminHandler.RefundPayment)
	admin.POST("/notifications", adminHandler.Notify)

	return e
}

// opsRequest matches probe, metrics and documentation routes.
func opsRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range []string{"/health", "/metrics", "/swagger"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
