package backend

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"expensetracker/cli/internal/backend/backendtest"
	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/tokens"
)

func newTestClient(t *testing.T, srv *backendtest.Server, store tokens.Store) *Client {
	t.Helper()
	return NewClient(Options{
		BaseURL:     srv.URL,
		Timeout:     5 * time.Second,
		RefreshPath: backendtest.RefreshPath,
		Store:       store,
		Logger:      zaptest.NewLogger(t),
	})
}

var listExpenses = Call{Method: http.MethodGet, Path: backendtest.ExpensesPath}

func TestDo_AttachesStoredAccessToken(t *testing.T) {
	srv := backendtest.New(t)
	srv.AddUser("a", "a@x.com", "pw")
	store := tokens.NewMemoryStore(srv.Session(t, "a@x.com", time.Minute))
	c := newTestClient(t, srv, store)

	var out []map[string]any
	resp, err := c.Do(context.Background(), listExpenses, &out)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Len(t, out, 1)
	assert.Zero(t, srv.RefreshCalls.Load())
}

func TestDo_AnonymousCallCarriesNoToken(t *testing.T) {
	srv := backendtest.New(t)
	srv.AddUser("a", "a@x.com", "pw")
	store := tokens.NewMemoryStore(srv.Session(t, "a@x.com", time.Minute))
	c := newTestClient(t, srv, store)

	call := listExpenses
	call.Anonymous = true
	_, err := c.Do(context.Background(), call, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Status))
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err))
	assert.Zero(t, srv.RefreshCalls.Load(), "anonymous calls never refresh")
}

func TestDo_RecoversFromExpiredAccessToken(t *testing.T) {
	srv := backendtest.New(t)
	srv.AddUser("a", "a@x.com", "pw")
	stale := srv.Session(t, "a@x.com", -time.Minute)
	store := tokens.NewMemoryStore(stale)
	c := newTestClient(t, srv, store)

	resp, err := c.Do(context.Background(), listExpenses, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.EqualValues(t, 1, srv.RefreshCalls.Load())

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, stale.AccessToken, got.AccessToken)
	assert.NotEqual(t, stale.RefreshToken, got.RefreshToken)
	assert.NotEmpty(t, got.RefreshToken)

	ids := srv.RequestIDs(backendtest.ExpensesPath)
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.Equal(t, ids[0], ids[1], "retry shares the request id of the original attempt")
}

func TestDo_RefreshWithoutNewRefreshTokenKeepsOld(t *testing.T) {
	srv := backendtest.New(t)
	srv.KeepRefreshToken = true
	srv.AddUser("a", "a@x.com", "pw")
	stale := srv.Session(t, "a@x.com", -time.Minute)
	store := tokens.NewMemoryStore(stale)
	c := newTestClient(t, srv, store)

	_, err := c.Do(context.Background(), listExpenses, nil)
	require.NoError(t, err)

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, stale.AccessToken, got.AccessToken)
	assert.Equal(t, stale.RefreshToken, got.RefreshToken)
}

func TestDo_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	srv := backendtest.New(t)
	srv.RefreshDelay = 100 * time.Millisecond
	srv.AddUser("a", "a@x.com", "pw")
	store := tokens.NewMemoryStore(srv.Session(t, "a@x.com", -time.Minute))
	c := newTestClient(t, srv, store)

	const callers = 8
	var (
		wg     sync.WaitGroup
		failed atomic.Int32
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Do(context.Background(), listExpenses, nil); err != nil {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failed.Load())
	assert.EqualValues(t, 1, srv.RefreshCalls.Load())
}

func TestDo_RefreshFailureExpiresSession(t *testing.T) {
	srv := backendtest.New(t)
	srv.FailRefresh = http.StatusUnauthorized
	srv.AddUser("a", "a@x.com", "pw")
	store := tokens.NewMemoryStore(srv.Session(t, "a@x.com", -time.Minute))
	c := newTestClient(t, srv, store)

	var notified atomic.Int32
	c.OnSessionExpired(func(error) { notified.Add(1) })

	_, err := c.Do(context.Background(), listExpenses, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.SessionExpired))
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err), "original rejection is preserved")
	assert.EqualValues(t, 1, notified.Load())

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestDo_NoStoredTokensExpireWithoutRefreshRequest(t *testing.T) {
	srv := backendtest.New(t)
	c := newTestClient(t, srv, tokens.NewMemoryStore(tokens.Pair{}))

	_, err := c.Do(context.Background(), listExpenses, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.SessionExpired))
	assert.Zero(t, srv.RefreshCalls.Load())
}

func TestDo_SecondUnauthorizedIsFinal(t *testing.T) {
	srv := backendtest.New(t)
	srv.AccessTTL = -time.Minute
	srv.AddUser("a", "a@x.com", "pw")
	store := tokens.NewMemoryStore(srv.Session(t, "a@x.com", -time.Minute))
	c := newTestClient(t, srv, store)

	_, err := c.Do(context.Background(), listExpenses, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, errors.SessionExpired))
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err))
	assert.EqualValues(t, 1, srv.RefreshCalls.Load())
	assert.Len(t, srv.RequestIDs(backendtest.ExpensesPath), 2)
}

func TestDo_StatusErrorCarriesBackendMessage(t *testing.T) {
	srv := backendtest.New(t)
	c := newTestClient(t, srv, tokens.NewMemoryStore(tokens.Pair{}))

	_, err := c.Do(context.Background(), Call{
		Method:    http.MethodPost,
		Path:      backendtest.LoginPath,
		Body:      map[string]string{"email": "nobody@x.com", "password": "pw"},
		Anonymous: true,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, errors.Status, errors.KindOf(err))
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
	assert.Equal(t, "invalid credentials", errors.Message(err))
}

func TestDo_UnreachableBackendIsNetworkError(t *testing.T) {
	srv := backendtest.New(t)
	c := newTestClient(t, srv, tokens.NewMemoryStore(tokens.Pair{}))
	srv.Close()

	_, err := c.Do(context.Background(), listExpenses, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Network))
	assert.Zero(t, srv.RefreshCalls.Load())
}
