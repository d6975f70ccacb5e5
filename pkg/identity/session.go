package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrNoToken is returned when a session carries no bearer token.
var ErrNoToken = errors.New("no bearer token")

// Session is the caller's identity as seen by services. Tokens are opaque
// and forwarded as is.
type Session interface {
	CurrentUserEmail() (string, bool)
	Token(ctx context.Context) (string, error)
}

type bearerSession struct {
	email string
	token string
}

// NewBearerSession wraps an already verified email and its bearer token.
func NewBearerSession(email, token string) Session {
	return bearerSession{email: strings.TrimSpace(email), token: strings.TrimSpace(token)}
}

func (s bearerSession) CurrentUserEmail() (string, bool) {
	return s.email, s.email != ""
}

func (s bearerSession) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Anonymous is a session without user, used for public pages.
func Anonymous() Session { return bearerSession{} }
