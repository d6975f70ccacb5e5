package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on sign up and on change.
const MinPasswordLength = 8

type UseCase interface {
	Register(ctx context.Context, email, password string) (Session, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Me(ctx context.Context, id uuid.UUID) (Account, error)
	ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error
}

// Session is what a client receives after signing in.
type Session struct {
	Account Account
	Token   Token
}

type service struct {
	accounts Accounts
	issuer   Issuer
	log      *slog.Logger
	now      func() time.Time
}

func NewService(accounts Accounts, issuer Issuer, log *slog.Logger) UseCase {
	if log == nil {
		log = slog.Default()
	}
	return &service{accounts: accounts, issuer: issuer, log: log, now: time.Now}
}

func (s *service) Register(ctx context.Context, email, password string) (Session, error) {
	email, err := CanonicalEmail(email)
	if err != nil {
		return Session{}, err
	}
	if len(password) < MinPasswordLength {
		return Session{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	acc := Account{ID: uuid.New(), Email: email, PasswordHash: string(hash), CreatedAt: now, LastLoginAt: &now}
	// the unique index on email decides between concurrent sign ups
	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("create account: %w", err)
	}
	s.log.Info("account created", "account", acc.ID)
	return s.open(ctx, acc)
}

func (s *service) Login(ctx context.Context, email, password string) (Session, error) {
	email, err := CanonicalEmail(email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	acc, err := s.accounts.ByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return Session{}, ErrInvalidCredentials
	case err != nil:
		return Session{}, fmt.Errorf("load account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	now := s.now().UTC()
	if err := s.accounts.TouchLogin(ctx, acc.ID, now); err != nil {
		s.log.Warn("record login time", "account", acc.ID, "err", err)
	} else {
		acc.LastLoginAt = &now
	}
	return s.open(ctx, acc)
}

func (s *service) Me(ctx context.Context, id uuid.UUID) (Account, error) {
	return s.accounts.ByID(ctx, id)
}

func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	acc, err := s.accounts.ByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	if len(next) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.accounts.SetPassword(ctx, id, string(hash))
}

func (s *service) open(ctx context.Context, acc Account) (Session, error) {
	tok, err := s.issuer.Issue(ctx, acc)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Account: acc, Token: tok}, nil
}

// CanonicalEmail validates a bare address and lower-cases it.
func CanonicalEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
