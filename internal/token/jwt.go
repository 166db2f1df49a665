package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService signs tokens with HS256 and a process-wide symmetric secret.
// Rotating the secret invalidates all outstanding tokens.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable so tests can control expiry
	now func() time.Time
}

type jwtClaims struct {
	UserID int64  `json:"uid"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret must not be empty")
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token with the subject email, user id, kind and expiry
func (s *JWTService) Issue(userID int64, email string, kind Kind, ttl time.Duration) (string, error) {
	now := s.now()

	claims := jwtClaims{
		UserID: userID,
		Kind:   string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTService) IssueAccess(userID int64, email string) (string, error) {
	return s.Issue(userID, email, KindAccess, s.accessTTL)
}

func (s *JWTService) IssueRefresh(userID int64, email string) (string, error) {
	return s.Issue(userID, email, KindRefresh, s.refreshTTL)
}

// Verify parses and validates a token. Expired tokens yield ErrExpiredToken,
// everything else that fails yields ErrInvalidToken.
func (s *JWTService) Verify(tokenStr string) (*Claims, error) {
	var claims jwtClaims

	parsed, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	issuedAt := time.Time{}
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}

	return &Claims{
		UserID:    claims.UserID,
		Subject:   claims.Subject,
		Kind:      Kind(claims.Kind),
		IssuedAt:  issuedAt,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
