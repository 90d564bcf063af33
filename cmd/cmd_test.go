package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"expensetracker/cli/internal/backend/backendtest"
	"expensetracker/cli/internal/config"
	"expensetracker/cli/internal/errors"
	"expensetracker/cli/internal/tokens"
)

type harness struct {
	srv   *backendtest.Server
	store *tokens.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	pterm.DisableOutput()
	t.Cleanup(pterm.EnableOutput)

	srv := backendtest.New(t)
	srv.AddUser("a", "a@x.com", "pw")
	store := tokens.NewMemoryStore(tokens.Pair{})

	prevLoad, prevOpen := loadConfig, openStore
	loadConfig = func() (*config.Config, error) {
		return &config.Config{
			Mode:       config.ModeLocal,
			BaseURL:    srv.URL,
			Timeout:    5 * time.Second,
			LogLevel:   "error",
			TokenStore: config.TokenStoreConfig{Backend: config.TokenStoreMemory},
			Endpoints:  srv.Endpoints(),
		}, nil
	}
	openStore = func(context.Context, *config.Config, *zap.Logger) (tokens.Store, func(), error) {
		return store, func() {}, nil
	}
	t.Cleanup(func() { loadConfig, openStore = prevLoad, prevOpen })

	return &harness{srv: srv, store: store}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	loginEmail, loginUsername, loginPasswordStdin = "", "", false
	registerEmail, registerUsername, registerPasswordStdin, registerThenLogin = "", "", false, false
	callData, tokenStoreFlag = "", ""

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) stored(t *testing.T) tokens.Pair {
	t.Helper()
	p, err := h.store.Get(context.Background())
	require.NoError(t, err)
	return p
}

func TestLoginWhoamiLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "pw\n", "login", "--email", "a@x.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@x.com")
	assert.True(t, h.stored(t).Complete())

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "a@x.com")
	assert.Contains(t, out, "expires in")

	for range 2 {
		out, err = h.run(t, "", "logout")
		require.NoError(t, err)
		assert.Contains(t, out, "Signed out")
		assert.True(t, h.stored(t).Empty())
	}

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "not logged in")
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "bad\n", "login", "--username", "a", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, errors.Auth, errors.KindOf(err))
	assert.Equal(t, "invalid credentials", errors.Message(err))
	assert.True(t, h.stored(t).Empty())
}

func TestLoginRequiresIdentifierWithPasswordStdin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "pw\n", "login", "--password-stdin")
	require.Error(t, err)
	assert.Equal(t, errors.Validation, errors.KindOf(err))
	assert.Zero(t, h.srv.LoginCalls.Load())
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "pw\n", "register", "--email", "b@x.com", "--username", "b", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "b@x.com created")
	assert.True(t, h.stored(t).Empty())

	h2 := newHarness(t)
	out, err = h2.run(t, "pw\n", "register", "--email", "c@x.com", "--password-stdin", "--login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as c@x.com")
	assert.True(t, h2.stored(t).Complete())
}

func TestCallRenewsExpiredToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.Set(context.Background(), h.srv.Session(t, "a@x.com", -time.Minute)))

	out, err := h.run(t, "", "call", "get", backendtest.ExpensesPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"food"`)
	assert.EqualValues(t, 1, h.srv.RefreshCalls.Load())
}

func TestCallRejectsInvalidData(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "call", "POST", backendtest.ExpensesPath, "--data", "{nope")
	require.Error(t, err)
	assert.Equal(t, errors.Validation, errors.KindOf(err))
}

func TestThemeCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "light")

	out, err = h.run(t, "", "theme", "set", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")

	out, err = h.run(t, "", "theme", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "light")

	_, err = h.run(t, "", "theme", "set", "blue")
	require.Error(t, err)
	assert.Equal(t, errors.Validation, errors.KindOf(err))
}
