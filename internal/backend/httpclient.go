// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/logging"
	"expensetracker/cli/internal/tokens"
)

// DefaultTimeout bounds every request issued by Client.
const DefaultTimeout = 10 * time.Second

// HeaderRequestID carries one id per logical call; a retried attempt reuses it.
const HeaderRequestID = "X-Request-ID"

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	RefreshPath string
	Store       tokens.Store
	Logger      *zap.Logger
	// Transport replaces the default round tripper (tests, proxies).
	Transport http.RoundTripper
}

// Call describes one logical request.
type Call struct {
	Method string
	Path   string
	Body   any
	// Anonymous calls carry no bearer token and never trigger a refresh.
	Anonymous bool
}

// Client is the shared request issuer for the backend.
// It is safe for concurrent use.
type Client struct {
	rc          *resty.Client
	store       tokens.Store
	refreshPath string
	log         *zap.Logger

	refreshes singleflight.Group

	hooksMu sync.RWMutex
	expired []func(error)
}

// attempt is the per-attempt metadata handed to the outbound hook.
type attempt struct {
	n         int
	anonymous bool
	requestID string
}

type attemptKey struct{}

// NewClient builds a Client over resty with the go-json codec.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	if opts.Store == nil {
		opts.Store = tokens.NewMemoryStore(tokens.Pair{})
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	c := &Client{
		rc:          rc,
		store:       opts.Store,
		refreshPath: opts.RefreshPath,
		log:         opts.Logger.Named("backend"),
	}
	rc.OnBeforeRequest(c.attachToken)
	return c
}

// OnSessionExpired registers fn to be called after a failed refresh has
// cleared the token store. fn runs once per failed refresh, on the
// goroutine that performed it.
func (c *Client) OnSessionExpired(fn func(err error)) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.expired = append(c.expired, fn)
}

// attachToken is the outbound hook: authenticated attempts carry the stored
// access token as a bearer credential; without one the request goes out
// unauthenticated.
func (c *Client) attachToken(_ *resty.Client, r *resty.Request) error {
	a, _ := r.Context().Value(attemptKey{}).(attempt)
	if a.anonymous {
		return nil
	}
	pair, err := c.store.Get(r.Context())
	if err != nil {
		return errors.Wrap(errors.Status, "read token store", err)
	}
	if pair.HasAccess() {
		r.SetAuthToken(pair.AccessToken)
	}
	return nil
}

// Do issues call. A 401 on the first attempt of an authenticated call is
// recovered once by refreshing the token pair and re-issuing the call; the
// outcome of that retry is returned as the outcome of the call.
// When out is non-nil a successful JSON body is decoded into it.
func (c *Client) Do(ctx context.Context, call Call, out any) (*resty.Response, error) {
	requestID := uuid.NewString()

	resp, err := c.send(ctx, call, attempt{n: 0, anonymous: call.Anonymous, requestID: requestID})
	if err != nil {
		return resp, err
	}

	if resp.StatusCode() == http.StatusUnauthorized && !call.Anonymous {
		resp, err = c.recoverUnauthorized(ctx, call, requestID, resp)
		if err != nil {
			return resp, err
		}
	}

	if !resp.IsSuccess() {
		return resp, statusError(resp)
	}
	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return resp, errors.Wrap(errors.Status, "decode response from "+call.Path, err)
		}
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, call Call, a attempt) (*resty.Response, error) {
	r := c.rc.R().
		SetContext(context.WithValue(ctx, attemptKey{}, a)).
		SetHeader(HeaderRequestID, a.requestID)
	if call.Body != nil {
		r.SetBody(call.Body)
	}

	started := time.Now()
	resp, err := r.Execute(call.Method, call.Path)
	if err != nil {
		if errors.KindOf(err) != "" {
			return resp, err
		}
		c.log.Debug("request failed",
			zap.String("method", call.Method),
			zap.String("path", call.Path),
			zap.Int("attempt", a.n),
			zap.String("request_id", a.requestID),
			zap.String("error", logging.Mask(err.Error())),
		)
		return resp, errors.Wrap(errors.Network, "cannot reach backend", err)
	}

	c.log.Debug("request",
		zap.String("method", call.Method),
		zap.String("path", call.Path),
		zap.Int("status", resp.StatusCode()),
		zap.Int("attempt", a.n),
		zap.String("request_id", a.requestID),
		zap.Duration("took", time.Since(started)),
	)
	return resp, nil
}

// statusError converts a non-2xx response into an errors.Status error with
// the backend's message when it sent one.
func statusError(resp *resty.Response) error {
	msg := backendMessage(resp.Body())
	if msg == "" {
		msg = "unexpected status " + resp.Status()
	}
	return errors.WithStatus(resp.StatusCode(), msg)
}
