// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backendtest runs an in-process fake of the expense-tracker auth
// API for tests. Access tokens are real HS256 JWTs so expiry behaves the way
// it does against the real backend.
package backendtest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"expensetracker/cli/internal/config"
	"expensetracker/cli/internal/models"
	"expensetracker/cli/internal/tokens"
)

// Paths served by Server.
const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
	MePath       = "/api/auth/me"
	RefreshPath  = "/api/auth/refresh"
	// ExpensesPath is a protected resource with no auth semantics of its own.
	ExpensesPath = "/api/expenses"
)

type account struct {
	user     models.User
	password string
}

// Server is a fake backend. Zero-valued knobs give the happy path.
type Server struct {
	*httptest.Server

	// AccessTTL is the lifetime of minted access tokens. Default 15m.
	AccessTTL time.Duration
	// OmitLoginUser leaves the user object out of login responses.
	OmitLoginUser bool
	// KeepRefreshToken leaves refreshToken out of refresh responses.
	KeepRefreshToken bool
	// FailRefresh, when non-zero, is returned by the refresh endpoint.
	FailRefresh int
	// RefreshDelay stalls the refresh endpoint, to let concurrent callers pile up.
	RefreshDelay time.Duration

	LoginCalls    atomic.Int32
	RegisterCalls atomic.Int32
	MeCalls       atomic.Int32
	RefreshCalls  atomic.Int32

	secret []byte
	seq    atomic.Int64

	mu       sync.Mutex
	accounts map[string]account
	refresh  map[string]string
	seen     map[string][]string
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		AccessTTL: 15 * time.Minute,
		secret:    []byte("backendtest-secret"),
		accounts:  map[string]account{},
		refresh:   map[string]string{},
		seen:      map[string][]string{},
	}

	r := chi.NewRouter()
	r.Use(s.recordRequestID)
	r.Post(LoginPath, s.login)
	r.Post(RegisterPath, s.register)
	r.Post(RefreshPath, s.refreshTokens)
	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Get(MePath, s.me)
		r.Get(ExpensesPath, s.expenses)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Endpoints returns config endpoints pointing at s.
func (s *Server) Endpoints() config.Endpoints {
	return config.Endpoints{Login: LoginPath, Register: RegisterPath, Me: MePath, Refresh: RefreshPath}
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{user: models.User{Username: username, Email: email}, password: password}
}

// Session mints a pair for email whose access token expires after ttl.
// A negative ttl yields an already expired access token with a valid
// refresh token.
func (s *Server) Session(t testing.TB, email string, ttl time.Duration) tokens.Pair {
	t.Helper()
	access, err := s.mint(email, ttl)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return tokens.Pair{AccessToken: access, RefreshToken: s.issueRefresh(email)}
}

// RequestIDs returns the X-Request-ID values seen on path, in arrival order.
func (s *Server) RequestIDs(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen[path]...)
}

func (s *Server) mint(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ID:        fmt.Sprintf("a-%d", s.seq.Add(1)),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) issueRefresh(email string) string {
	rt := fmt.Sprintf("r-%d", s.seq.Add(1))
	s.mu.Lock()
	s.refresh[rt] = email
	s.mu.Unlock()
	return rt
}

func (s *Server) subject(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

type subjectKey struct{}

func withSubject(r *http.Request, email string) context.Context {
	return context.WithValue(r.Context(), subjectKey{}, email)
}

func (s *Server) recordRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.seen[r.URL.Path] = append(s.seen[r.URL.Path], r.Header.Get("X-Request-ID"))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing token"})
			return
		}
		email, err := s.subject(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withSubject(r, email)))
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	s.LoginCalls.Add(1)
	var in models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[in.Email]
	if !ok && in.Username != "" {
		for _, a := range s.accounts {
			if a.user.Username == in.Username {
				acc, ok = a, true
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok || acc.password != in.Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid credentials"})
		return
	}

	access, err := s.mint(acc.user.Email, s.AccessTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := map[string]any{
		"accessToken":  access,
		"refreshToken": s.issueRefresh(acc.user.Email),
	}
	if !s.OmitLoginUser {
		out["user"] = acc.user
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	s.RegisterCalls.Add(1)
	var in models.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "email already registered"})
		return
	}
	s.accounts[in.Email] = account{user: models.User{Username: in.Username, Email: in.Email}, password: in.Password}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) refreshTokens(w http.ResponseWriter, r *http.Request) {
	s.RefreshCalls.Add(1)
	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}
	if s.FailRefresh != 0 {
		writeJSON(w, s.FailRefresh, map[string]string{"message": "refresh rejected"})
		return
	}

	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	s.mu.Lock()
	email, ok := s.refresh[in.RefreshToken]
	if ok && !s.KeepRefreshToken {
		delete(s.refresh, in.RefreshToken)
	}
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid refresh token"})
		return
	}

	access, err := s.mint(email, s.AccessTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	out := map[string]any{"accessToken": access}
	if !s.KeepRefreshToken {
		out["refreshToken"] = s.issueRefresh(email)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.MeCalls.Add(1)
	email, _ := r.Context().Value(subjectKey{}).(string)

	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) expenses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "amount": 12.5, "category": "food"}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
