package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for user persistence.
var (
	ErrEmailExists = errors.New("email already registered")
	ErrNotFound    = errors.New("user not found")
)

// User is a registered account. PasswordHash holds a bcrypt hash, never the
// plaintext password.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	// Create persists a new user. It returns ErrEmailExists when the email
	// is already taken.
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}
