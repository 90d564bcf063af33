package backend

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/models"
)

const (
	loginFailed        = "login failed"
	registrationFailed = "registration failed"
)

// Login posts credentials to the login endpoint. It does not touch the
// token store; persisting the returned pair is the caller's job.
func (h *HTTP) Login(ctx context.Context, creds models.Credentials) (LoginResult, error) {
	resp, err := h.client.Do(ctx, Call{
		Method:    http.MethodPost,
		Path:      h.endpoints.Login,
		Body:      creds,
		Anonymous: true,
	}, nil)
	if err != nil {
		return LoginResult{}, authError(resp, err, loginFailed)
	}

	pair := extractTokens(resp.Body())
	if !pair.HasAccess() {
		return LoginResult{}, errors.New(errors.Auth, "login response did not include an access token")
	}
	if pair.RefreshToken == "" {
		h.log.Warn("login response did not include a refresh token; the session cannot be renewed")
	}

	return LoginResult{Tokens: pair, User: extractUser(resp.Body())}, nil
}

// Register creates an account. Any 2xx counts as success and the response
// body is ignored.
func (h *HTTP) Register(ctx context.Context, reg models.Registration) error {
	resp, err := h.client.Do(ctx, Call{
		Method:    http.MethodPost,
		Path:      h.endpoints.Register,
		Body:      reg,
		Anonymous: true,
	}, nil)
	if err != nil {
		return authError(resp, err, registrationFailed)
	}
	h.log.Debug("registered", zap.Int("status", resp.StatusCode()))
	return nil
}

// authError turns a rejected login or registration into an errors.Auth
// carrying the backend's message, or fallback when it sent none.
// Transport failures pass through unchanged.
func authError(resp *resty.Response, err error, fallback string) error {
	if errors.KindOf(err) != errors.Status || resp == nil {
		return err
	}
	msg := backendMessage(resp.Body())
	if msg == "" {
		msg = fallback
	}
	return &errors.E{Kind: errors.Auth, Message: msg, Status: resp.StatusCode(), Err: err}
}
