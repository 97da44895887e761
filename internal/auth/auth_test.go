package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	again, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")

	ok, err := CheckPassword(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "secret1")
	assert.Error(t, err)
}

func TestIssuerRoundTrip(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Hour)

	token, expiresAt, err := issuer.Issue(Identity{UserID: 42, Email: "a@example.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.UserID)
	assert.Equal(t, "a@example.com", id.Email)
}

func TestIssuerRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("s3cret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, _, err := issuer.Issue(Identity{UserID: 1})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIssuerRejectsForeignSignature(t *testing.T) {
	token, _, err := NewIssuer("other", time.Hour).Issue(Identity{UserID: 1})
	require.NoError(t, err)

	_, err = NewIssuer("s3cret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsUnsignedAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": 1,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer("s3cret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerRejectsGarbage(t *testing.T) {
	_, err := NewIssuer("s3cret", time.Hour).Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuerTTL(t *testing.T) {
	assert.Equal(t, 2*time.Hour, NewIssuer("s3cret", 2*time.Hour).TTL())
	assert.Equal(t, 24*time.Hour, NewIssuer("s3cret", 0).TTL(), "non-positive ttl falls back to a day")
}
