// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"go.uber.org/zap"

	"expensetracker/cli/internal/config"
	"expensetracker/cli/internal/tokens"
)

// HTTP implements API over Client.
type HTTP struct {
	client    *Client
	endpoints config.Endpoints
	log       *zap.Logger
}

// NewHTTP wraps an existing Client.
func NewHTTP(client *Client, endpoints config.Endpoints, logger *zap.Logger) *HTTP {
	if logger == nil {
		logger = zap.L()
	}
	return &HTTP{client: client, endpoints: endpoints, log: logger.Named("backend")}
}

// New builds the Client and API for cfg backed by store.
func New(cfg *config.Config, store tokens.Store, logger *zap.Logger) *HTTP {
	client := NewClient(Options{
		BaseURL:     cfg.HTTPBaseURL(),
		Timeout:     cfg.Timeout,
		RefreshPath: cfg.Endpoints.Refresh,
		Store:       store,
		Logger:      logger,
	})
	return NewHTTP(client, cfg.Endpoints, logger)
}

// Client returns the underlying request issuer for arbitrary calls.
func (h *HTTP) Client() *Client { return h.client }

// OnSessionExpired forwards to the underlying Client.
func (h *HTTP) OnSessionExpired(fn func(err error)) { h.client.OnSessionExpired(fn) }
