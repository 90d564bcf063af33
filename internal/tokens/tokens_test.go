package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/cli/internal/keychain"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory":   NewMemoryStore(Pair{}),
		"keychain": NewKeychainStore(keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p, err := s.Get(ctx)
			require.NoError(t, err)
			assert.True(t, p.Empty())

			want := Pair{AccessToken: "access", RefreshToken: "refresh"}
			require.NoError(t, s.Set(ctx, want))

			got, err := s.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			require.NoError(t, s.Clear(ctx))
			got, err = s.Get(ctx)
			require.NoError(t, err)
			assert.True(t, got.Empty())

			require.NoError(t, s.Clear(ctx))
		})
	}
}

func TestKeychainStoreSetEmptyRefreshRemovesIt(t *testing.T) {
	ctx := context.Background()
	s := NewKeychainStore(keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil)))

	require.NoError(t, s.Set(ctx, Pair{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Set(ctx, Pair{AccessToken: "b"}))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Pair{AccessToken: "b"}, got)
	assert.False(t, got.Complete())
	assert.True(t, got.HasAccess())
}

func TestPairPredicates(t *testing.T) {
	assert.True(t, Pair{}.Empty())
	assert.False(t, Pair{}.HasAccess())
	assert.False(t, Pair{RefreshToken: "r"}.Complete())
	assert.True(t, Pair{AccessToken: "a", RefreshToken: "r"}.Complete())
}

func TestAccessExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "a",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	got, ok := Pair{AccessToken: signed}.AccessExpiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = Pair{AccessToken: "opaque-token"}.AccessExpiry()
	assert.False(t, ok)

	_, ok = Pair{}.AccessExpiry()
	assert.False(t, ok)
}
