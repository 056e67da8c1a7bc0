package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest payload of the login form.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" example:"loja"`
	Password string `json:"password" example:"s3gredo"`
}

// LoginResponse carries the bearer token for the session.
// swagger:model LoginResponse
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
