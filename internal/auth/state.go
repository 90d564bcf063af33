package auth

import "expensetracker/cli/internal/models"

// SessionState is a snapshot of the provider.
//
// Unknown:         IsLoading, no user.
// Authenticated:   User set, IsAuthenticated.
// Unauthenticated: neither.
type SessionState struct {
	User            *models.User
	IsLoading       bool
	IsAuthenticated bool
}

func unknown() SessionState { return SessionState{IsLoading: true} }

func authenticated(u models.User) SessionState {
	return SessionState{User: &u, IsAuthenticated: true}
}

func unauthenticated() SessionState { return SessionState{} }

func (s SessionState) clone() SessionState {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Route is a navigation intent emitted by the provider. The CLI renders it
// as an instruction; other front ends may switch screens.
type Route string

// RouteLogin asks the user to log in again.
const RouteLogin Route = "login"
