package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_AccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour, "library")

	token, expiresAt, err := m.GenerateAccessToken("8f1c1c4e-2b1a-4f57-9a57-1f2d1b7f1a10", "alice", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "8f1c1c4e-2b1a-4f57-9a57-1f2d1b7f1a10", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "library", claims.Issuer)
}

func TestManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour, "library")
	verifier := NewManager("secret-b", time.Hour, "library")

	token, _, err := issuer.GenerateAccessToken("id", "bob", "user")
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", time.Minute, "library")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.GenerateAccessToken("id", "carol", "user")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_DefaultTTL(t *testing.T) {
	m := NewManager("secret", 0, "library")
	assert.Equal(t, DefaultAccessTTL, m.accessTTL)
}
