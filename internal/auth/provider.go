// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth derives the session state of the current user from the token
// store and the backend, and exposes login, register and logout.
package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"expensetracker/cli/internal/backend"
	"expensetracker/cli/internal/models"
	"expensetracker/cli/internal/tokens"
)

// Option configures a Provider.
type Option func(*Provider)

// WithNavigator sets the function that receives navigation intents.
func WithNavigator(fn func(Route)) Option {
	return func(p *Provider) { p.navigate = fn }
}

// WithLogger sets the provider logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) { p.log = l }
}

// Provider owns the session state. It is safe for concurrent use; state
// changes are published to subscribers after the lock is released.
type Provider struct {
	api      backend.API
	store    tokens.Store
	log      *zap.Logger
	navigate func(Route)

	mu        sync.RWMutex
	state     SessionState
	listeners map[int]func(SessionState)
	nextID    int
}

// NewProvider returns a Provider in the Unknown state and subscribes it to
// session expiry on api.
func NewProvider(api backend.API, store tokens.Store, opts ...Option) *Provider {
	p := &Provider{
		api:       api,
		store:     store,
		log:       zap.L(),
		state:     unknown(),
		listeners: map[int]func(SessionState){},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("auth")
	api.OnSessionExpired(p.sessionExpired)
	return p
}

// State returns a snapshot of the current session.
func (p *Provider) State() SessionState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.clone()
}

// Subscribe registers fn for every state change and returns a function that
// removes it.
func (p *Provider) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) set(s SessionState) {
	p.mu.Lock()
	p.state = s
	fns := make([]func(SessionState), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(s.clone())
	}
}

// Mount resolves the Unknown state. With no stored access token the session
// is Unauthenticated and no request is made. Otherwise the token is verified
// against the backend; on failure the stored tokens are cleared and the
// verification error is returned.
func (p *Provider) Mount(ctx context.Context) error {
	pair, err := p.store.Get(ctx)
	if err != nil {
		p.set(unauthenticated())
		return err
	}
	if !pair.HasAccess() {
		p.set(unauthenticated())
		return nil
	}

	u, err := p.api.Me(ctx)
	if err != nil {
		p.log.Debug("session verification failed", zap.Error(err))
		if clearErr := p.store.Clear(ctx); clearErr != nil {
			p.log.Warn("clear tokens after failed verification", zap.Error(clearErr))
		}
		p.set(unauthenticated())
		return err
	}

	p.set(authenticated(u))
	return nil
}

// Login validates creds, exchanges them for a token pair and persists it.
// When the login response has no user, it is fetched from the me endpoint.
// A rejected login leaves the state untouched.
func (p *Provider) Login(ctx context.Context, creds models.Credentials) error {
	if err := models.Validate(creds); err != nil {
		return err
	}

	res, err := p.api.Login(ctx, creds)
	if err != nil {
		return err
	}
	if err := p.store.Set(ctx, res.Tokens); err != nil {
		return err
	}

	if res.User == nil {
		u, err := p.api.Me(ctx)
		if err != nil {
			if clearErr := p.store.Clear(ctx); clearErr != nil {
				p.log.Warn("clear tokens after failed verification", zap.Error(clearErr))
			}
			p.set(unauthenticated())
			return err
		}
		res.User = &u
	}

	p.log.Debug("logged in", zap.String("user", res.User.Display()))
	p.set(authenticated(*res.User))
	return nil
}

// Register creates an account. It never changes the session.
func (p *Provider) Register(ctx context.Context, reg models.Registration) error {
	if err := models.Validate(reg); err != nil {
		return err
	}
	return p.api.Register(ctx, reg)
}

// Logout clears the stored tokens and the user. It is local only and
// idempotent.
func (p *Provider) Logout(ctx context.Context) error {
	err := p.store.Clear(ctx)
	p.set(unauthenticated())
	return err
}

// sessionExpired runs when the client could not refresh the session. The
// client has already cleared the store.
func (p *Provider) sessionExpired(err error) {
	p.log.Info("session expired", zap.Error(err))
	p.set(unauthenticated())
	if p.navigate != nil {
		p.navigate(RouteLogin)
	}
}
