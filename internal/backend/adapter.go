// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend talks to the expense-tracker REST API.
// Client is the shared request issuer: it attaches the stored access token
// to every authenticated call and transparently recovers from one expired
// token per call by refreshing the pair. HTTP implements the auth endpoints
// on top of it.
package backend

import (
	"context"

	"expensetracker/cli/internal/models"
	"expensetracker/cli/internal/tokens"
)

// API defines the backend operations the session layer depends on.
// Implementations may call the real HTTP endpoints or provide fakes for tests.
type API interface {
	// Login exchanges credentials for a token pair. User is nil when the
	// backend did not include it in the response.
	Login(ctx context.Context, creds models.Credentials) (LoginResult, error)
	// Register creates an account. It does not authenticate.
	Register(ctx context.Context, reg models.Registration) error
	// Me returns the user the stored access token belongs to.
	Me(ctx context.Context) (models.User, error)
	// OnSessionExpired registers fn to run when the stored session could not
	// be refreshed and has been cleared.
	OnSessionExpired(fn func(err error))
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Tokens tokens.Pair
	User   *models.User
}
