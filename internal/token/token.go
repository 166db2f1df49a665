// Package token issues and verifies compact signed tokens proving a user's
// identity for a bounded time window. Two interchangeable backends exist:
// JWT HS256 and PASETO v4.local. Verification failures are normal results,
// not panics; callers branch on the sentinel errors.
package token

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Kind distinguishes what a token is allowed to be used for. Access and
// refresh tokens share the signing mechanism and differ only in lifetime.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
	KindReset   Kind = "reset"
	KindVerify  Kind = "verify"
)

// Claims is the verified payload of a token. Subject is the user's email.
type Claims struct {
	UserID    int64
	Subject   string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service mints and validates signed tokens. Implementations must return
// ErrExpiredToken for expired tokens and ErrInvalidToken for anything else
// that fails verification (bad signature, malformed input, missing claims).
type Service interface {
	// Issue signs a token for the given subject with an explicit kind and ttl
	Issue(userID int64, email string, kind Kind, ttl time.Duration) (string, error)
	// IssueAccess signs a short-lived access token
	IssueAccess(userID int64, email string) (string, error)
	// IssueRefresh signs a long-lived refresh token
	IssueRefresh(userID int64, email string) (string, error)
	// Verify checks signature and expiry and returns the claims
	Verify(tokenStr string) (*Claims, error)
}
