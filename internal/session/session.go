// Package session holds the authenticated portal session and where it is kept.
package session

import (
	"context"
	"errors"
	"time"

	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

var (
	// ErrNotFound is returned when no session exists for an id.
	ErrNotFound = errors.New("session not found")
	// ErrExpired is returned when the session token is past its expiry.
	ErrExpired = errors.New("session expired")
	// ErrInvalidResponse is returned when login does not yield both a user and a token.
	ErrInvalidResponse = errors.New("Invalid response from server")
)

// Session is one signed-in browser: the backend identity and its bearer token.
type Session struct {
	ID        string      `json:"id"`
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ExpiresAt reads the token's exp claim. The zero time with a nil error means
// the token carries no expiry.
func (s *Session) ExpiresAt() (time.Time, error) {
	exp, err := utils.TokenExpiry(s.Token)
	if errors.Is(err, utils.ErrNoExpiry) {
		return time.Time{}, nil
	}
	return exp, err
}

// IsExpired reports whether the session can no longer be used at now. A
// session without token or user, or with an unreadable token, is expired.
func (s *Session) IsExpired(now time.Time) bool {
	if s == nil || s.Token == "" || s.User.ID == "" {
		return true
	}
	exp, err := s.ExpiresAt()
	if err != nil {
		return true
	}
	return !exp.IsZero() && exp.Before(now)
}

// pastMaxAge reports whether a session whose token has no exp claim has
// outlived maxAge. Tokens with an exp are judged by IsExpired instead.
func pastMaxAge(s *Session, maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return false
	}
	exp, err := s.ExpiresAt()
	if err != nil || !exp.IsZero() {
		return false
	}
	return now.Sub(s.CreatedAt) > maxAge
}

// Store persists sessions between requests.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that need expired sessions removed
// periodically. Redis expires keys by itself.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
