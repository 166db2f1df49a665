package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPasetoService(t *testing.T) *PasetoService {
	t.Helper()
	key := []byte("0123456789abcdef0123456789abcdef")
	svc, err := NewPasetoService(key, 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestPasetoKeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("short"), time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestPasetoRoundTrip(t *testing.T) {
	svc := newTestPasetoService(t)

	tokenStr, err := svc.Issue(9, "alice@example.com", KindReset, 15*time.Minute)
	require.NoError(t, err)

	claims, err := svc.Verify(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.Equal(t, KindReset, claims.Kind)
}

func TestPasetoExpiry(t *testing.T) {
	svc := newTestPasetoService(t)

	issued := time.Now()
	tokenStr, err := svc.IssueAccess(1, "bob@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = svc.Verify(tokenStr)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoTampered(t *testing.T) {
	svc := newTestPasetoService(t)

	tokenStr, err := svc.IssueAccess(2, "carol@example.com")
	require.NoError(t, err)

	b := []byte(tokenStr)
	b[len(b)-1] ^= 0x01
	_, err = svc.Verify(string(b))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("v4.local.garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
