// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/disney-bounding/internal/config"
	"codeberg.org/oliverandrich/disney-bounding/internal/database"
	"codeberg.org/oliverandrich/disney-bounding/internal/filestore"
	"codeberg.org/oliverandrich/disney-bounding/internal/handlers"
	"codeberg.org/oliverandrich/disney-bounding/internal/pocketbase"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore"
	"codeberg.org/oliverandrich/disney-bounding/internal/recordstore/embedded"
	"codeberg.org/oliverandrich/disney-bounding/internal/repository"
	"codeberg.org/oliverandrich/disney-bounding/internal/services/email"
)

// Backend is an opened record store.
type Backend struct {
	Store recordstore.Store
	// Files serves record files locally. Nil when the store hosts its own.
	Files handlers.FileOpener
	Close func() error
}

// OpenStore opens the record store selected by cfg.Store.Backend.
func OpenStore(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case config.StorePocketBase:
		return openPocketBase(cfg), nil
	case config.StoreEmbedded, "":
		return openEmbedded(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func openPocketBase(cfg *config.Config) *Backend {
	timeout := pocketbase.DefaultTimeout
	if cfg.PocketBase.Timeout > 0 {
		timeout = time.Duration(cfg.PocketBase.Timeout) * time.Second
	}

	provider := pocketbase.NewProvider(cfg.PocketBase.URL,
		pocketbase.WithProviderHTTPClient(&http.Client{Timeout: timeout}),
		pocketbase.WithSuperuser(cfg.PocketBase.SuperuserEmail, cfg.PocketBase.SuperuserPassword),
		pocketbase.WithSharedAuthHook(superuserAuthHook(slog.Default())),
	)

	slog.Info("using pocketbase record store", "url", cfg.PocketBase.URL)
	return &Backend{
		Store: pocketbase.NewStore(provider),
		Close: func() error { return nil },
	}
}

// superuserAuthHook reports changes of the shared superuser session. An
// empty token means PocketBase rejected the session and it was dropped.
func superuserAuthHook(logger *slog.Logger) pocketbase.AuthChangeFunc {
	return func(token string, record json.RawMessage) {
		if token == "" {
			logger.Warn("pocketbase superuser session dropped")
			return
		}
		var su struct {
			Email string `json:"email"`
		}
		_ = json.Unmarshal(record, &su)
		logger.Info("pocketbase superuser signed in", "email", su.Email)
	}
}

func openEmbedded(ctx context.Context, cfg *config.Config) (*Backend, error) {
	secret, err := embedded.DecodeSecret(cfg.Store.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid store token secret: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	files, err := filestore.New(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open file store: %w", err)
	}

	mailer, err := email.NewSender(&cfg.SMTP)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure mail: %w", err)
	}

	store, err := embedded.New(embedded.Options{
		Repo:        repository.New(db),
		Files:       files,
		Mailer:      mailer,
		TokenSecret: secret,
		TokenTTL:    time.Duration(cfg.Store.TokenDuration) * time.Second,
		OTPLength:   cfg.OTP.Length,
		OTPTTL:      time.Duration(cfg.OTP.Duration) * time.Second,
		BaseURL:     cfg.Server.BaseURL,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("using embedded record store", "dsn", cfg.Database.DSN, "files", cfg.Files.Backend)
	return &Backend{Store: store, Files: store, Close: db.Close}, nil
}
