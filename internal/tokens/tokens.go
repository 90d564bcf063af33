// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package tokens defines the access/refresh token pair and the Store that
// persists it between runs. Consumers receive a Store explicitly instead of
// reaching for process-wide storage, so tests can substitute MemoryStore.
package tokens

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Pair is an access token together with the refresh token that renews it.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both tokens are present. A partially written
// pair is treated as no session by callers that need both.
func (p Pair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// HasAccess reports whether an access token is present.
func (p Pair) HasAccess() bool {
	return p.AccessToken != ""
}

// Empty reports whether neither token is present.
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// AccessExpiry decodes the exp claim of a JWT access token without
// verifying its signature. ok is false for opaque tokens or tokens without
// an expiry.
func (p Pair) AccessExpiry() (exp time.Time, ok bool) {
	if p.AccessToken == "" {
		return time.Time{}, false
	}
	tok, _, err := jwt.NewParser().ParseUnverified(p.AccessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	nd, err := tok.Claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}

// Store persists a Pair as two independent entries. Writes are not atomic
// across the two entries unless the backend says otherwise; missing entries
// read back as empty strings.
type Store interface {
	Get(ctx context.Context) (Pair, error)
	Set(ctx context.Context, p Pair) error
	Clear(ctx context.Context) error
}
