package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-signing-secret", 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestJWTRoundTrip(t *testing.T) {
	svc := newTestJWTService(t)

	tokenStr, err := svc.Issue(42, "alice@example.com", KindAccess, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestJWTExpiry(t *testing.T) {
	svc := newTestJWTService(t)

	issued := time.Now()
	tokenStr, err := svc.Issue(1, "bob@example.com", KindAccess, 30*time.Minute)
	require.NoError(t, err)

	// Still valid just before expiry
	svc.now = func() time.Time { return issued.Add(29 * time.Minute) }
	_, err = svc.Verify(tokenStr)
	assert.NoError(t, err)

	// Invalid just after expiry, and the result is stable on repeat checks
	svc.now = func() time.Time { return issued.Add(31 * time.Minute) }
	for i := 0; i < 2; i++ {
		_, err = svc.Verify(tokenStr)
		assert.ErrorIs(t, err, ErrExpiredToken)
	}
}

func TestJWTTamperedSignature(t *testing.T) {
	svc := newTestJWTService(t)

	tokenStr, err := svc.IssueAccess(7, "carol@example.com")
	require.NoError(t, err)

	// Flip a character in the signature segment
	parts := strings.Split(tokenStr, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTGarbageInput(t *testing.T) {
	svc := newTestJWTService(t)

	for _, input := range []string{"", "garbage", "a.b.c", "ey.ey.ey"} {
		_, err := svc.Verify(input)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", input)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	svc := newTestJWTService(t)
	other, err := NewJWTService("different-secret", time.Minute, time.Hour)
	require.NoError(t, err)

	tokenStr, err := svc.IssueRefresh(3, "dave@example.com")
	require.NoError(t, err)

	_, err = other.Verify(tokenStr)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTDefaultDurations(t *testing.T) {
	svc := newTestJWTService(t)

	access, err := svc.IssueAccess(1, "a@b.com")
	require.NoError(t, err)
	refresh, err := svc.IssueRefresh(1, "a@b.com")
	require.NoError(t, err)

	accessClaims, err := svc.Verify(access)
	require.NoError(t, err)
	refreshClaims, err := svc.Verify(refresh)
	require.NoError(t, err)

	assert.Equal(t, KindAccess, accessClaims.Kind)
	assert.Equal(t, KindRefresh, refreshClaims.Kind)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), accessClaims.ExpiresAt, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), refreshClaims.ExpiresAt, 5*time.Second)
}
