// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"expensetracker/cli/internal/auth"
	"expensetracker/cli/internal/backend"
	"expensetracker/cli/internal/config"
	"expensetracker/cli/internal/httperrors"
	"expensetracker/cli/internal/keychain"
	"expensetracker/cli/internal/logging"
	"expensetracker/cli/internal/theme"
	"expensetracker/cli/internal/tokens"
	"expensetracker/cli/internal/xdg"
)

// app is the wiring shared by the session commands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    tokens.Store
	api      *backend.HTTP
	provider *auth.Provider
	palette  theme.Palette
	close    func()
}

// Replaced in tests.
var (
	loadConfig = config.Load
	openStore  = defaultOpenStore
)

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if tokenStoreFlag != "" {
		cfg.TokenStore.Backend = tokenStoreFlag
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log := logging.Init(logging.Config{Level: cfg.LogLevel, Verbose: verbose})
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	api := backend.New(cfg, store, log)
	provider := auth.NewProvider(api, store, auth.WithLogger(log), auth.WithNavigator(navigate))

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		api:      api,
		provider: provider,
		palette:  loadPalette(log),
		close:    sync.OnceFunc(closeStore),
	}, nil
}

func defaultOpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (tokens.Store, func(), error) {
	noop := func() {}
	switch cfg.TokenStore.Backend {
	case config.TokenStoreMemory:
		return tokens.NewMemoryStore(tokens.Pair{}), noop, nil
	case config.TokenStoreRedis:
		rs, err := tokens.OpenRedisStore(ctx, cfg.TokenStore.RedisURL, cfg.TokenStore.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	default:
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, nil, err
		}
		km, err := keychain.NewManager(keychain.Config{
			FileDir:        dir,
			FilePassphrase: cfg.TokenStore.FilePassphrase,
			Logger:         log,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open keychain: %w", err)
		}
		return tokens.NewKeychainStore(km), noop, nil
	}
}

func loadPalette(log *zap.Logger) theme.Palette {
	fs, err := theme.DefaultFileStore()
	if err != nil {
		return theme.PaletteFor(theme.Default)
	}
	t, err := fs.Load()
	if err != nil {
		log.Debug("load theme", zap.Error(err))
	}
	return theme.PaletteFor(t)
}

// navigate renders navigation intents from the auth provider.
func navigate(r auth.Route) {
	if r == auth.RouteLogin {
		pterm.Warning.Println("Your session has expired. Run 'expensetracker login' to sign in again.")
	}
}

// withSpinner runs fn behind a transient spinner.
func withSpinner(text string, fn func() error) error {
	spinner, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		return fn()
	}
	defer func() { _ = spinner.Stop() }()
	return fn()
}

// presentedError marks an error whose troubleshooting output has already
// been printed.
type presentedError struct{ error }

func (e presentedError) Unwrap() error { return e.error }

// presentNetwork prints troubleshooting output for transport and server
// failures and marks them as presented.
func (a *app) presentNetwork(err error, action string) error {
	if httperrors.Present(err, action, a.cfg.HTTPBaseURL()) {
		return presentedError{err}
	}
	return err
}

// splitIdentifier treats input containing @ as an email.
func splitIdentifier(s string) (username, email string) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "@") {
		return "", s
	}
	return s, ""
}
