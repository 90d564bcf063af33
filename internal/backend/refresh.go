package backend

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/logging"
	"expensetracker/cli/internal/tokens"
)

const refreshKey = "refresh"

// recoverUnauthorized handles a 401 on the first attempt of an authenticated call.
// It renews the pair (sharing one renewal between concurrent callers) and
// re-issues the call exactly once. If renewal fails the session is gone and
// the original rejection is returned wrapped as SessionExpired.
func (c *Client) recoverUnauthorized(ctx context.Context, call Call, requestID string, failed *resty.Response) (*resty.Response, error) {
	original := statusError(failed)

	used := ""
	if failed.Request != nil {
		used = failed.Request.Token
	}

	if _, err := c.refresh(ctx, used); err != nil {
		c.log.Debug("refresh failed",
			zap.String("path", call.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return failed, errors.Wrap(errors.SessionExpired, "session expired, please log in again", original)
	}

	resp, err := c.send(ctx, call, attempt{n: 1, requestID: requestID})
	if err != nil {
		return resp, err
	}
	// A second 401 is final; the caller sees it as a status error.
	return resp, nil
}

// refresh renews the stored pair. Concurrent callers share a single
// in-flight renewal. used is the access token the rejected request carried:
// when the store already holds a different one, another caller has renewed
// the pair in the meantime and no request is made.
//
// The renewal runs detached from ctx cancellation so one caller giving up
// does not fail the renewal for everyone waiting on it; the client timeout
// still bounds it.
func (c *Client) refresh(ctx context.Context, used string) (tokens.Pair, error) {
	detached := context.WithoutCancel(ctx)
	v, err, shared := c.refreshes.Do(refreshKey, func() (any, error) {
		return c.renew(detached, used)
	})
	if shared {
		c.log.Debug("joined in-flight refresh")
	}
	if err != nil {
		return tokens.Pair{}, err
	}
	return v.(tokens.Pair), nil
}

func (c *Client) renew(ctx context.Context, used string) (tokens.Pair, error) {
	current, err := c.store.Get(ctx)
	if err != nil {
		return tokens.Pair{}, c.expire(ctx, errors.Wrap(errors.SessionExpired, "read token store", err))
	}
	if current.HasAccess() && current.AccessToken != used {
		return current, nil
	}
	if current.RefreshToken == "" {
		return tokens.Pair{}, c.expire(ctx, errors.New(errors.SessionExpired, "no refresh token stored"))
	}

	next, err := c.exchange(ctx, current.RefreshToken)
	if err != nil {
		return tokens.Pair{}, c.expire(ctx, err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}
	if err := c.store.Set(ctx, next); err != nil {
		return tokens.Pair{}, c.expire(ctx, errors.Wrap(errors.SessionExpired, "save refreshed tokens", err))
	}
	c.log.Debug("tokens refreshed", logging.Token("access_token", next.AccessToken))
	return next, nil
}

// exchange posts the refresh token and returns the new pair.
func (c *Client) exchange(ctx context.Context, refreshToken string) (tokens.Pair, error) {
	if c.refreshPath == "" {
		return tokens.Pair{}, errors.New(errors.SessionExpired, "refresh endpoint not configured")
	}
	resp, err := c.Do(ctx, Call{
		Method:    http.MethodPost,
		Path:      c.refreshPath,
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	}, nil)
	if err != nil {
		return tokens.Pair{}, err
	}
	pair := extractTokens(resp.Body())
	if !pair.HasAccess() {
		return tokens.Pair{}, errors.New(errors.SessionExpired, "refresh response did not include an access token")
	}
	return pair, nil
}

// expire clears the store and notifies OnSessionExpired subscribers.
// It returns cause for convenience.
func (c *Client) expire(ctx context.Context, cause error) error {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn("clear token store after failed refresh", zap.Error(err))
	}

	c.hooksMu.RLock()
	hooks := make([]func(error), len(c.expired))
	copy(hooks, c.expired)
	c.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn(cause)
	}
	return cause
}
