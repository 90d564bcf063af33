// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides thread-safe access to the OS keychain/credential
// store for expensetracker secrets. Tokens are stored as individual items so
// that other tools inspecting the keychain see one entry per secret.
//
// On macOS the native `security` command is preferred because it does not
// trigger the keychain access prompt on every rebuild of the binary; every
// other platform goes through 99designs/keyring.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("keychain: key not found")

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "expensetracker"

// Keys used for storing secrets in the OS keychain.
const (
	KeyAccessToken  = "auth_access_token"
	KeyRefreshToken = "auth_refresh_token"
)

// Config controls which keyring backends may be used.
type Config struct {
	// FileDir is where the encrypted-file backend keeps items.
	FileDir string
	// FilePassphrase enables the encrypted-file backend when non-empty.
	FilePassphrase string
	Logger         *zap.Logger
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// Manager provides thread-safe operations on the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	log     *zap.Logger
}

// NewManager opens the platform keychain.
func NewManager(cfg Config) (*Manager, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}

	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend(log)
		if err == nil {
			return &Manager{backend: backend, log: log}, nil
		}
		log.Debug("security command unavailable, falling back to keyring", zap.Error(err))
	}

	ring, err := openRing(cfg)
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring, log: log}, nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring, log: zap.NewNop()}
}

// allowedBackends lists the native backends for the current OS plus the
// encrypted file backend when a passphrase is configured.
func allowedBackends(cfg Config) []keyring.BackendType {
	var backends []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		backends = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		backends = []keyring.BackendType{keyring.WinCredBackend}
	default:
		backends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		}
	}
	if cfg.FilePassphrase != "" && cfg.FileDir != "" {
		backends = append(backends, keyring.FileBackend)
	}
	return backends
}

func openRing(cfg Config) (keyring.Keyring, error) {
	kcfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowedBackends(cfg),
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
		FileDir:                 cfg.FileDir,
		FilePasswordFunc:        keyring.FixedStringPrompt(cfg.FilePassphrase),
	}

	ring, err := keyring.Open(kcfg)
	if err != nil {
		if errors.Is(err, keyring.ErrNoAvailImpl) {
			return nil, errors.New("no secure storage available: install a secret service or set EXPENSETRACKER_FILE_PASSPHRASE to use an encrypted file")
		}
		return nil, err
	}
	return ring, nil
}

// Get returns the value stored under key, or ErrNotFound.
// This method is thread-safe.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", ErrNotFound
		}
		return v, nil
	}

	it, err := m.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Set stores value under key, replacing any previous value.
// This method is thread-safe.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       ServiceName + " " + key,
		Description: "expensetracker session secret",
	})
}

// Remove deletes key. Removing a missing key is not an error.
// This method is thread-safe.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
