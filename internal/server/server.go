// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/handlers"
	"codeberg.org/oliverandrich/disney-bounding/internal/i18n"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/otp"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/outfits"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/session"
	"codeberg.org/oliverandrich/disney-bounding/internal/sse"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"store", cfg.Store.Backend,
	)

	if err := i18n.Init(); err != nil {
		return fmt.Errorf("failed to init i18n: %w", err)
	}

	backend, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			slog.Error("failed to close record store", "error", closeErr)
		}
	}()

	e, err := New(cfg, backend, sse.NewHub())
	if err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, e, cfg)
}

// New builds the Echo instance with all middleware and routes.
func New(cfg *config.Config, backend *Backend, hub *sse.Hub) (*echo.Echo, error) {
	sessions, err := session.NewManager(&cfg.Session, cfg.SecureCookies())
	if err != nil {
		return nil, fmt.Errorf("failed to configure sessions: %w", err)
	}
	resolver := session.NewResolver(sessions, backend.Store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, cfg, findAssets(), resolver)
	setupRoutes(e, routeDeps{
		outfits:  outfits.NewService(backend.Store, sse.NewNotifier(hub)),
		otp:      otp.NewService(backend.Store),
		sessions: sessions,
		files:    backend.Files,
		hub:      hub,
	})

	return e, nil
}

type routeDeps struct {
	outfits  *outfits.Service
	otp      *otp.Service
	sessions *session.Manager
	files    handlers.FileOpener
	hub      *sse.Hub
}

func setupRoutes(e *echo.Echo, deps routeDeps) {
	h := handlers.New(deps.outfits)
	authH := handlers.NewAuth(deps.otp, deps.sessions)
	modH := handlers.NewModeration(deps.outfits)
	sseH := handlers.NewSSEHandler(deps.hub)

	e.GET("/static/*", staticHandler())

	e.GET("/health", h.Health)
	e.GET("/", h.Home)
	e.GET("/characters/:slug", h.Character)
	e.POST("/characters/:slug/outfits", h.SubmitOutfitForm, requireAuth())

	e.GET("/auth/login", authH.LoginPage)
	e.POST("/auth/login/code", authH.LoginCode)
	e.POST("/auth/login/verify", authH.LoginVerify)
	e.GET("/auth/login/back", authH.LoginBack)
	e.POST("/auth/logout", authH.LogoutPage)

	e.GET("/events", sseH.Events, requireAuth())

	api := e.Group("/api")
	api.POST("/auth/request-otp", authH.RequestOTP)
	api.POST("/auth/confirm-otp", authH.ConfirmOTP)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/auth/me", authH.Me)

	api.GET("/community-outfits", h.ListOutfits)
	api.POST("/community-outfits", h.CreateOutfit, requireAuth())
	api.DELETE("/community-outfits/:id", h.DeleteOutfit, requireAuth())

	if deps.files != nil {
		api.GET("/files/:collection/:id/:filename", handlers.NewFiles(deps.files).Serve)
	}

	admin := e.Group("/admin/outfits", requireAuth(), requireAdmin())
	admin.GET("", modH.List)
	admin.POST("/:id/approve", modH.Approve)
	admin.POST("/:id/reject", modH.Reject)
	admin.GET("/:id/image", modH.Image)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
