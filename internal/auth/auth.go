// Package auth implements registration, login and bearer-token resolution on
// top of the user repository. Passwords are stored as bcrypt hashes; access
// tokens are HS256 JWTs carrying the user ID as subject.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jitterlabs/order-api/internal/domain/user"
)

// Sentinel errors for authentication.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so login failures never reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Registration is the input for creating an account.
type Registration struct {
	Email    string
	Password string
	Name     string
}

// Session is the result of a successful registration or login.
type Session struct {
	User        *user.User
	AccessToken string
}

// Service issues and verifies credentials.
type Service struct {
	users    user.Repository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth Service. secret signs access tokens; tokenTTL
// bounds their lifetime.
func NewService(users user.Repository, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Register creates a new account and returns it with a fresh access token.
// A taken email surfaces as user.ErrEmailExists.
func (s *Service) Register(ctx context.Context, reg Registration) (*Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		Name:         reg.Name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: token}, nil
}

// Login verifies the email/password pair and returns a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: token}, nil
}

// UserFromToken resolves a bearer token to the stored user.
func (s *Service) UserFromToken(ctx context.Context, token string) (*user.User, error) {
	userID, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, errors.Wrap(err, "find user")
	}
	return u, nil
}
