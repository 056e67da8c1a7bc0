// Package user owns staff accounts and password checks. Passwords are only
// ever stored as bcrypt hashes.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalid            = errors.New("invalid user")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// dummyHash is compared against when the username is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() string {
	h, _ := HashPassword("imaginarte")
	return h
})

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalid)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

// Authenticate returns the user when the password matches. Unknown users and
// wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			CheckPassword(dummyHash(), password)
			log.Warn().Str("username", username).Msg("login: unknown user")
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("login: lookup failed")
		return nil, fmt.Errorf("auth: %w", err)
	}
	if !CheckPassword(u.PasswordHash, password) {
		log.Warn().Str("username", username).Msg("login: wrong password")
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Ensure registers the account unless the username is already taken.
func (s *Service) Ensure(ctx context.Context, username, password string) error {
	_, err := s.Register(ctx, username, password)
	if errors.Is(err, ErrAlreadyExist) {
		return nil
	}
	return err
}
