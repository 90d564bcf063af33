// Package models holds the records exchanged with the expense-tracker backend.
package models

// User is the account record returned by login and /api/auth/me.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Display returns the best identifier to show for the user.
func (u User) Display() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}
