package models

// Credentials is the login request body. The backend accepts either an
// email or a username alongside the password.
type Credentials struct {
	Username string `json:"username,omitempty" validate:"required_without=Email"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the register request body.
type Registration struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
