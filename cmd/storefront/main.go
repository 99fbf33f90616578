package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/carrental/storefront/docs"
	"github.com/carrental/storefront/internal/api"
	"github.com/carrental/storefront/internal/api/middleware"
	"github.com/carrental/storefront/internal/core/service"
	"github.com/carrental/storefront/internal/infrastructure/config"
	internalhttp "github.com/carrental/storefront/internal/infrastructure/http"
	"github.com/carrental/storefront/internal/infrastructure/http/handlers"
	"github.com/carrental/storefront/internal/infrastructure/httpclient"
	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
	"github.com/carrental/storefront/internal/infrastructure/storage"
	"github.com/carrental/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "storefront",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage, logger.For("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("storage unavailable")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("storage close failed")
		}
	}()

	hc, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, logger.For("httpclient"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid backend configuration")
	}
	backend := rentalapi.New(hc, rentalapi.Options{
		Retry:   rentalapi.RetryPolicy{Attempts: cfg.Backend.RetryAttempts, Delay: cfg.Backend.RetryDelay},
		Uploads: rentalapi.FileRules{MaxBytes: cfg.Upload.MaxBytes},
	}, logger.For("rentalapi"))

	nav := middleware.NewNavigator()
	session := service.NewSessionStore(
		store,
		rentalapi.NewSessionBackend(backend),
		hc,
		nav,
		logger.For("session"),
		service.SessionOptions{
			RedirectDelay: cfg.Session.RedirectDelay,
			LoginPath:     cfg.Session.LoginPath,
		},
	)
	hc.OnSessionExpired(func(path string) {
		log.Debug().Str("path", path).Msg("session-scoped request unauthorized")
		session.Expire()
	})

	// Protected views wait while the saved session is restored.
	go func() {
		if err := session.Restore(ctx); err != nil {
			log.Error().Err(err).Msg("session restore failed")
		}
	}()

	e := api.NewRouter(api.Deps{
		Session:        session,
		API:            backend,
		Edits:          service.NewEditRequestService(store, logger.For("edit_requests"), nil),
		Dashboard:      service.NewDashboardService(logger.For("dashboard")),
		Navigator:      nav,
		UploadMaxBytes: cfg.Upload.MaxBytes,
		Log:            logger.For("http"),
	})
	internalhttp.RegisterOps(e,
		handlers.Probe{Name: "backend", Check: backend.Ping},
		handlers.Probe{Name: "storage", Check: store.Ping},
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.ListenAddr).
			Str("env", cfg.Env).
			Str("backend", hc.BaseURL()).
			Msg("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("storefront stopped")
}
