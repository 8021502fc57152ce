package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(Secret("not-so-secret"), 0).WithClock(func() time.Time { return now })
	require.Equal(t, DefaultTokenTTL, issuer.TTL())

	token, err := issuer.Issue("bob")
	require.NoError(t, err)

	id, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "bob", id.Username)
	require.True(t, id.IssuedAt.Equal(now))
	require.True(t, id.ExpiresAt.Equal(now.Add(time.Hour)))

	_, err = issuer.Issue("")
	var missing MissingField
	require.ErrorAs(t, err, &missing)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(Secret("not-so-secret"), time.Minute).WithClock(func() time.Time { return now })
	token, err := issuer.Issue("bob")
	require.NoError(t, err)

	later := issuer.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
	_, err = later.Verify(token)
	require.ErrorIs(t, err, Expired)
}

func TestVerifyRejects(t *testing.T) {
	issuer := NewIssuer(Secret("not-so-secret"), time.Hour)
	other := NewIssuer(Secret("another-secret"), time.Hour)
	token, err := other.Issue("bob")
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, InvalidSignature)

	_, err = issuer.Verify("garbage")
	require.ErrorIs(t, err, Malformed)

	_, err = issuer.Verify("")
	require.ErrorIs(t, err, Malformed)

	// same secret, different algorithm
	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.RegisteredClaims{
		Subject:   "bob",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("not-so-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(hs384)
	require.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "bob",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	require.Error(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "bob",
	}).SignedString([]byte("not-so-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(noExpiry)
	require.Error(t, err)
	require.False(t, errors.Is(err, Expired))
}
