package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailTaken         = errors.New("an account already uses this email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password too short")
)

// Account is a NodalCV login. Its email is the key under which the workflow
// backend stores the owner's profiles, so it is kept lower-cased.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// Accounts persists accounts.
type Accounts interface {
	Create(ctx context.Context, a Account) error
	ByEmail(ctx context.Context, email string) (Account, error)
	ByID(ctx context.Context, id uuid.UUID) (Account, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Token is a signed access token and the moment it stops being accepted.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Issuer signs access tokens for an account.
type Issuer interface {
	Issue(ctx context.Context, a Account) (Token, error)
}
