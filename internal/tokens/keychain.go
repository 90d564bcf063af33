// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tokens

import (
	"context"
	stderrors "errors"

	"expensetracker/cli/internal/keychain"
)

// secretStore is the subset of keychain.Manager used for tokens.
type secretStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// KeychainStore persists the pair in the OS keychain under
// keychain.KeyAccessToken and keychain.KeyRefreshToken.
type KeychainStore struct {
	secrets secretStore
}

// NewKeychainStore wraps a keychain manager.
func NewKeychainStore(m *keychain.Manager) *KeychainStore {
	return &KeychainStore{secrets: m}
}

func (k *KeychainStore) Get(_ context.Context) (Pair, error) {
	access, err := k.load(keychain.KeyAccessToken)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := k.load(keychain.KeyRefreshToken)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (k *KeychainStore) load(key string) (string, error) {
	v, err := k.secrets.Get(key)
	if stderrors.Is(err, keychain.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (k *KeychainStore) Set(_ context.Context, p Pair) error {
	if err := k.put(keychain.KeyAccessToken, p.AccessToken); err != nil {
		return err
	}
	return k.put(keychain.KeyRefreshToken, p.RefreshToken)
}

func (k *KeychainStore) put(key, value string) error {
	if value == "" {
		return k.secrets.Remove(key)
	}
	return k.secrets.Set(key, value)
}

func (k *KeychainStore) Clear(_ context.Context) error {
	errAccess := k.secrets.Remove(keychain.KeyAccessToken)
	errRefresh := k.secrets.Remove(keychain.KeyRefreshToken)
	return stderrors.Join(errAccess, errRefresh)
}
